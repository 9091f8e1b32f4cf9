package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures deliveries in arrival order so tests can assert on both
// payload identity and sequencing.
type recorder struct {
	mu       sync.Mutex
	events   []string
	payloads []any
}

func (r *recorder) mark(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) handler(name string) Handler {
	return func(ctx context.Context, payload any) error {
		r.mu.Lock()
		r.events = append(r.events, name)
		r.payloads = append(r.payloads, payload)
		r.mu.Unlock()
		return nil
	}
}

func failing(err error) Handler {
	return func(context.Context, any) error { return err }
}

func TestSubscribe(t *testing.T) {
	t.Run("rejects empty topic", func(t *testing.T) {
		b := New()
		err := b.Subscribe("", "someone", func(context.Context, any) error { return nil })
		require.ErrorIs(t, err, ErrEmptyTopic)

		err = b.Subscribe("   ", "someone", func(context.Context, any) error { return nil })
		require.ErrorIs(t, err, ErrEmptyTopic)
	})

	t.Run("rejects nil handler", func(t *testing.T) {
		b := New()
		err := b.Subscribe("/Tasks/Created", "someone", nil)
		require.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("records subscribers in registration order", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "first", rec.handler("first")))
		require.NoError(t, b.Subscribe("/Tasks/Created", "second", rec.handler("second")))
		require.NoError(t, b.Subscribe("/Tasks/Created", "third", rec.handler("third")))

		assert.Equal(t, []string{"first", "second", "third"}, b.Subscribers("/Tasks/Created"))
	})

	t.Run("lists topics sorted", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "t", rec.handler("t")))
		require.NoError(t, b.Subscribe("/Auth/UserRegistered", "a", rec.handler("a")))

		assert.Equal(t, []string{"/Auth/UserRegistered", "/Tasks/Created"}, b.Topics())
	})

	t.Run("allows anonymous subscribers", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "", rec.handler("anon")))
		assert.Equal(t, []string{""}, b.Subscribers("/Tasks/Created"))
	})
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the exact payload exactly once", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Auth/UserRegistered", "greeter", rec.handler("greeter")))

		payload := map[string]string{"user_id": "user_1", "email": "ada@example.com"}
		require.NoError(t, b.Publish(ctx, "/Auth/UserRegistered", payload))

		require.Len(t, rec.payloads, 1)
		delivered, ok := rec.payloads[0].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "user_1", delivered["user_id"])
		assert.Equal(t, "ada@example.com", delivered["email"])
	})

	t.Run("runs handlers sequentially in registration order", func(t *testing.T) {
		b := New()
		rec := &recorder{}

		require.NoError(t, b.Subscribe("/Tasks/Created", "first", func(ctx context.Context, _ any) error {
			rec.mark("first:start")
			rec.mark("first:end")
			return nil
		}))
		require.NoError(t, b.Subscribe("/Tasks/Created", "second", func(ctx context.Context, _ any) error {
			rec.mark("second:start")
			rec.mark("second:end")
			return nil
		}))

		require.NoError(t, b.Publish(ctx, "/Tasks/Created", nil))

		// the first handler completes before the second starts
		assert.Equal(t, []string{"first:start", "first:end", "second:start", "second:end"}, rec.events)
	})

	t.Run("is a no-op without subscribers", func(t *testing.T) {
		b := New()
		require.NoError(t, b.Publish(ctx, "/Nobody/Listens", "payload"))
	})

	t.Run("delivers nil payloads", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "rec", rec.handler("rec")))
		require.NoError(t, b.Publish(ctx, "/Tasks/Created", nil))
		require.Len(t, rec.payloads, 1)
		assert.Nil(t, rec.payloads[0])
	})

	t.Run("duplicate subscription doubles delivery", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		h := rec.handler("dup")
		require.NoError(t, b.Subscribe("/Tasks/Created", "dup", h))
		require.NoError(t, b.Subscribe("/Tasks/Created", "dup", h))

		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "x"))
		assert.Equal(t, []string{"dup", "dup"}, rec.events)
	})

	t.Run("fail-fast stops delivery at the first error", func(t *testing.T) {
		b := New()
		rec := &recorder{}
		boom := errors.New("boom")

		require.NoError(t, b.Subscribe("/Tasks/Created", "ok", rec.handler("ok")))
		require.NoError(t, b.Subscribe("/Tasks/Created", "bad", failing(boom)))
		require.NoError(t, b.Subscribe("/Tasks/Created", "never", rec.handler("never")))

		err := b.Publish(ctx, "/Tasks/Created", "x")
		require.Error(t, err)

		var perr *PublishError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "/Tasks/Created", perr.Topic)
		assert.Equal(t, "bad", perr.Subscriber)
		assert.ErrorIs(t, err, boom)

		// the third handler never ran
		assert.Equal(t, []string{"ok"}, rec.events)
	})

	t.Run("collect runs every handler and joins failures", func(t *testing.T) {
		b := New(WithDelivery(Collect))
		rec := &recorder{}
		first := errors.New("first failure")
		second := errors.New("second failure")

		require.NoError(t, b.Subscribe("/Tasks/Created", "bad1", failing(first)))
		require.NoError(t, b.Subscribe("/Tasks/Created", "ok", rec.handler("ok")))
		require.NoError(t, b.Subscribe("/Tasks/Created", "bad2", failing(second)))

		err := b.Publish(ctx, "/Tasks/Created", "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
		assert.Equal(t, []string{"ok"}, rec.events, "healthy subscriber still ran")
	})

	t.Run("reentrant publish is legal", func(t *testing.T) {
		b := New()
		rec := &recorder{}

		require.NoError(t, b.Subscribe("/Auth/UserRegistered", "chainer", func(ctx context.Context, _ any) error {
			rec.mark("registered")
			return b.Publish(ctx, "/Tasks/Created", "welcome task")
		}))
		require.NoError(t, b.Subscribe("/Tasks/Created", "rec", rec.handler("created")))

		require.NoError(t, b.Publish(ctx, "/Auth/UserRegistered", "u"))
		assert.Equal(t, []string{"registered", "created"}, rec.events)
	})

	t.Run("subscription during publish does not receive the in-flight message", func(t *testing.T) {
		b := New()
		rec := &recorder{}

		require.NoError(t, b.Subscribe("/Tasks/Created", "self-wirer", func(ctx context.Context, _ any) error {
			return b.Subscribe("/Tasks/Created", "late", rec.handler("late"))
		}))

		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "x"))
		assert.Empty(t, rec.events, "late subscriber must not see the message that registered it")

		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "y"))
		assert.Equal(t, []string{"late"}, rec.events)
	})

	t.Run("bounded recursion fails with ErrDepthExceeded", func(t *testing.T) {
		b := New(WithMaxDepth(3))
		var calls atomic.Int64

		require.NoError(t, b.Subscribe("/loop", "looper", func(ctx context.Context, _ any) error {
			calls.Add(1)
			return b.Publish(ctx, "/loop", nil)
		}))

		err := b.Publish(ctx, "/loop", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDepthExceeded)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("handles concurrent publishers", func(t *testing.T) {
		b := New()

		const numSubscribers = 10
		const numEvents = 100

		counters := make([]atomic.Int64, numSubscribers)
		for i := 0; i < numSubscribers; i++ {
			idx := i
			name := fmt.Sprintf("sub-%d", i)
			require.NoError(t, b.Subscribe("/Tasks/Created", name, func(context.Context, any) error {
				counters[idx].Add(1)
				return nil
			}))
		}

		var wg sync.WaitGroup
		wg.Add(numEvents)
		for i := 0; i < numEvents; i++ {
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, b.Publish(ctx, "/Tasks/Created", i))
			}(i)
		}
		wg.Wait()

		for i := range counters {
			assert.EqualValues(t, numEvents, counters[i].Load())
		}
	})
}

func TestDeliveryString(t *testing.T) {
	assert.Equal(t, "fail-fast", FailFast.String())
	assert.Equal(t, "collect", Collect.String())
	assert.Equal(t, "delivery(42)", Delivery(42).String())
}
