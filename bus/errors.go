package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTopic rejects subscriptions without a topic.
	ErrEmptyTopic = errors.New("topic must not be empty")
	// ErrNilHandler rejects subscriptions without a handler.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrPayloadType reports a payload that does not match the type a Typed
	// handler was declared with.
	ErrPayloadType = errors.New("payload type mismatch")
	// ErrDepthExceeded reports a reentrant publish past the configured
	// nesting limit.
	ErrDepthExceeded = errors.New("publish depth exceeded")
)

// PublishError reports the failure of a single subscriber during Publish.
// Under FailFast it is the returned error; under Collect the returned error
// joins one PublishError per failed subscriber.
type PublishError struct {
	Err        error
	Topic      string
	Subscriber string
}

func (e *PublishError) Error() string {
	if e.Subscriber == "" {
		return fmt.Sprintf("publish %s: %v", e.Topic, e.Err)
	}
	return fmt.Sprintf("publish %s: subscriber %s: %v", e.Topic, e.Subscriber, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
