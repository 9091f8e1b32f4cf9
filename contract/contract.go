package contract

import (
	"errors"
	"strings"

	"github.com/casualjim/rook/pkg/stdx"
	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
)

// Operation is one entry of an agent's contract: an operation name plus the
// topics and payload shapes it touches. Topic is the subscription topic and
// stays empty for operations that only publish.
//
// Name should match the Op of the binding that implements it, otherwise Lint
// cannot correlate the declaration with the wiring.
type Operation struct {
	Name        string
	Description string
	Topic       string
	Publishes   []string
	Input       *jsonschema.Schema
	Output      *jsonschema.Schema
}

// Option configures an Operation under construction.
type Option = opts.Option[Operation]

var (
	// Description sets the human-readable summary.
	Description = opts.ForName[Operation, string]("Description")
	// On sets the topic this operation subscribes to.
	On = opts.ForName[Operation, string]("Topic")
)

// Emits declares topics this operation may publish to.
func Emits(topic string, extraTopics ...string) Option {
	return opts.Type[Operation](func(o *Operation) error {
		o.Publishes = append(o.Publishes, topic)
		o.Publishes = append(o.Publishes, extraTopics...)
		return nil
	})
}

// Input declares the payload type this operation consumes. The schema is
// reflected here, once; dispatch never touches it.
func Input[T any]() Option {
	return opts.Type[Operation](func(o *Operation) error {
		o.Input = schemaFor[T]()
		return nil
	})
}

// Output declares the payload type this operation produces on its published
// topics.
func Output[T any]() Option {
	return opts.Type[Operation](func(o *Operation) error {
		o.Output = schemaFor[T]()
		return nil
	})
}

// New builds an Operation from the name and options.
func New(name string, options ...Option) (Operation, error) {
	if strings.TrimSpace(name) == "" {
		return Operation{}, errors.New("operation name is required")
	}

	op := Operation{Name: name}
	if err := opts.Apply(&op, options); err != nil {
		return Operation{}, err
	}
	return op, nil
}

// Must is New for contracts declared as package variables, where a bad
// declaration should fail at startup.
func Must(name string, options ...Option) Operation {
	return stdx.Must1(New(name, options...))
}
