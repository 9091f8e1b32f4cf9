package bus

import (
	"context"
	"fmt"
	"reflect"
)

// Handler processes one message delivered on a topic. Returning a non-nil
// error marks the delivery as failed; what happens next depends on the bus's
// Delivery policy.
//
// Handlers run synchronously on the publisher's goroutine, so a slow handler
// slows the publisher. They may publish to the bus themselves.
type Handler func(ctx context.Context, payload any) error

// Typed adapts a strongly typed handler to the Handler signature. Payloads
// that do not assert to T fail the delivery with ErrPayloadType instead of
// panicking, so one misbehaving publisher cannot take down a subscriber.
func Typed[T any](fn func(ctx context.Context, payload T) error) Handler {
	return func(ctx context.Context, payload any) error {
		typed, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: want %s, got %T", ErrPayloadType, reflect.TypeFor[T](), payload)
		}
		return fn(ctx, typed)
	}
}
