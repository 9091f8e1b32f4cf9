package bus

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/casualjim/rook/pkg/slogx"
)

// Observer receives delivery lifecycle signals from the bus. Observers are
// instrumentation only: they cannot veto or alter dispatch, and the bus calls
// them synchronously, so implementations should be quick.
//
// The bus itself neither logs nor counts; anything you want to know about
// traffic flows through here.
type Observer interface {
	// OnPublish fires once per publish that found subscribers, before the
	// first handler runs.
	OnPublish(ctx context.Context, topic string, subscribers int)

	// OnDeliver fires after a handler returned nil.
	OnDeliver(ctx context.Context, topic, subscriber string, elapsed time.Duration)

	// OnError fires after a handler returned an error.
	OnError(ctx context.Context, topic, subscriber string, err error)

	// OnDrop fires when a publish found no subscribers.
	OnDrop(ctx context.Context, topic string)
}

// NopObserver ignores everything. It is the default.
type NopObserver struct{}

func (NopObserver) OnPublish(context.Context, string, int)                   {}
func (NopObserver) OnDeliver(context.Context, string, string, time.Duration) {}
func (NopObserver) OnError(context.Context, string, string, error)           {}
func (NopObserver) OnDrop(context.Context, string)                           {}

// SlogObserver writes one structured log line per signal.
func SlogObserver(log *slog.Logger) Observer {
	if log == nil {
		log = slog.Default()
	}
	return &slogObserver{log: log}
}

type slogObserver struct {
	log *slog.Logger
}

func (o *slogObserver) OnPublish(ctx context.Context, topic string, subscribers int) {
	o.log.DebugContext(ctx, "publishing", slogx.Topic(topic), slog.Int("subscribers", subscribers))
}

func (o *slogObserver) OnDeliver(ctx context.Context, topic, subscriber string, elapsed time.Duration) {
	o.log.DebugContext(ctx, "delivered", slogx.Topic(topic), slogx.Subscriber(subscriber), slog.Duration("elapsed", elapsed))
}

func (o *slogObserver) OnError(ctx context.Context, topic, subscriber string, err error) {
	o.log.ErrorContext(ctx, "delivery failed", slogx.Topic(topic), slogx.Subscriber(subscriber), slogx.Error(err))
}

func (o *slogObserver) OnDrop(ctx context.Context, topic string) {
	o.log.DebugContext(ctx, "no subscribers", slogx.Topic(topic))
}

// NewCompositeObserver fans signals out to several observers, in order.
func NewCompositeObserver(observers ...Observer) Observer {
	return CompositeObserver(observers)
}

// CompositeObserver allows combining multiple observers into a single one.
type CompositeObserver []Observer

func (c CompositeObserver) OnPublish(ctx context.Context, topic string, subscribers int) {
	for o := range slices.Values(c) {
		o.OnPublish(ctx, topic, subscribers)
	}
}

func (c CompositeObserver) OnDeliver(ctx context.Context, topic, subscriber string, elapsed time.Duration) {
	for o := range slices.Values(c) {
		o.OnDeliver(ctx, topic, subscriber, elapsed)
	}
}

func (c CompositeObserver) OnError(ctx context.Context, topic, subscriber string, err error) {
	for o := range slices.Values(c) {
		o.OnError(ctx, topic, subscriber, err)
	}
}

func (c CompositeObserver) OnDrop(ctx context.Context, topic string) {
	for o := range slices.Values(c) {
		o.OnDrop(ctx, topic)
	}
}
