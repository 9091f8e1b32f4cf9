package bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/rook/internal/registry"
	"github.com/fogfish/opts"
)

// Delivery selects how Publish treats handler failures.
type Delivery int

const (
	// FailFast aborts the remaining handlers on the first failure and
	// returns that failure to the publisher.
	FailFast Delivery = iota
	// Collect runs every handler regardless of failures and returns the
	// aggregate, one *PublishError per failed subscriber.
	Collect
)

func (d Delivery) String() string {
	switch d {
	case FailFast:
		return "fail-fast"
	case Collect:
		return "collect"
	default:
		return fmt.Sprintf("delivery(%d)", int(d))
	}
}

type subscription struct {
	name string
	fn   Handler
}

// subscribers is the per-topic ordered registration list. The slice is only
// ever appended to; Publish works from a snapshot so handlers can subscribe
// or publish reentrantly without holding the lock.
type subscribers struct {
	mu   sync.RWMutex
	list []subscription
}

func (s *subscribers) add(name string, fn Handler) {
	s.mu.Lock()
	s.list = append(s.list, subscription{name: name, fn: fn})
	s.mu.Unlock()
}

func (s *subscribers) snapshot() []subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.list)
}

// Bus is the topic table. Construct with New; the zero value is not usable.
type Bus struct {
	topics   registry.Registry[*subscribers]
	observer Observer
	delivery Delivery
	maxDepth int
}

var (
	// WithDelivery selects the failure policy for the whole bus.
	WithDelivery = opts.ForName[Bus, Delivery]("delivery")
	// WithMaxDepth bounds reentrant publishes. Zero means unbounded.
	WithMaxDepth = opts.ForName[Bus, int]("maxDepth")
	// WithObserver installs the instrumentation sink.
	WithObserver = opts.ForName[Bus, Observer]("observer")
)

// New creates a bus. It panics when an option fails to apply, which only
// happens on programmer error.
func New(options ...opts.Option[Bus]) *Bus {
	b := &Bus{
		topics:   registry.New[*subscribers](),
		observer: NopObserver{},
	}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}
	if b.observer == nil {
		b.observer = NopObserver{}
	}
	return b
}

// Subscribe appends fn to the topic's registration list. The subscriber name
// is an identity for diagnostics and introspection; it does not have to be
// unique and may be empty. Subscribing the same handler to the same topic
// twice is legal and doubles delivery. There is no unsubscribe.
func (b *Bus) Subscribe(topic, subscriber string, fn Handler) error {
	if strings.TrimSpace(topic) == "" {
		return ErrEmptyTopic
	}
	if fn == nil {
		return ErrNilHandler
	}

	subs, _ := b.topics.GetOrAdd(topic, func() *subscribers {
		return &subscribers{}
	})
	subs.add(subscriber, fn)
	return nil
}

// Publish delivers payload to every subscriber of topic, in registration
// order, on the caller's goroutine. It returns after the last handler
// returns. A topic without subscribers is a no-op and returns nil.
//
// Under FailFast the first handler error stops delivery and is returned
// wrapped in *PublishError. Under Collect all handlers run and the failures
// come back joined with errors.Join.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if b.maxDepth > 0 {
		deeper, err := descend(ctx, b.maxDepth)
		if err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		ctx = deeper
	}

	subs, found := b.topics.Get(topic)
	if !found {
		b.observer.OnDrop(ctx, topic)
		return nil
	}
	current := subs.snapshot()
	if len(current) == 0 {
		b.observer.OnDrop(ctx, topic)
		return nil
	}

	b.observer.OnPublish(ctx, topic, len(current))

	var failures []error
	for sub := range slices.Values(current) {
		start := time.Now()
		if err := sub.fn(ctx, payload); err != nil {
			b.observer.OnError(ctx, topic, sub.name, err)
			perr := &PublishError{Topic: topic, Subscriber: sub.name, Err: err}
			if b.delivery == FailFast {
				return perr
			}
			failures = append(failures, perr)
			continue
		}
		b.observer.OnDeliver(ctx, topic, sub.name, time.Since(start))
	}
	return errors.Join(failures...)
}

// Topics returns the known topic names, sorted. A topic is known once it has
// seen at least one subscription.
func (b *Bus) Topics() []string {
	names := make([]string, 0, b.topics.Len())
	b.topics.ForEach(func(name string, _ *subscribers) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Subscribers returns the subscriber names registered on topic, in
// registration order.
func (b *Bus) Subscribers(topic string) []string {
	subs, found := b.topics.Get(topic)
	if !found {
		return nil
	}
	current := subs.snapshot()
	names := make([]string, len(current))
	for i, sub := range current {
		names[i] = sub.name
	}
	return names
}

type depthKey struct{}

// descend records one more level of publish nesting on the context and
// refuses to go past limit.
func descend(ctx context.Context, limit int) (context.Context, error) {
	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= limit {
		return nil, fmt.Errorf("%w (limit %d)", ErrDepthExceeded, limit)
	}
	return context.WithValue(ctx, depthKey{}, depth+1), nil
}
