package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver captures observer signals as strings so ordering is easy
// to assert on.
type recordingObserver struct {
	mu      sync.Mutex
	signals []string
}

func (r *recordingObserver) record(s string) {
	r.mu.Lock()
	r.signals = append(r.signals, s)
	r.mu.Unlock()
}

func (r *recordingObserver) OnPublish(_ context.Context, topic string, subscribers int) {
	r.record(fmt.Sprintf("publish:%s:%d", topic, subscribers))
}

func (r *recordingObserver) OnDeliver(_ context.Context, topic, subscriber string, _ time.Duration) {
	r.record(fmt.Sprintf("deliver:%s:%s", topic, subscriber))
}

func (r *recordingObserver) OnError(_ context.Context, topic, subscriber string, err error) {
	r.record(fmt.Sprintf("error:%s:%s:%v", topic, subscriber, err))
}

func (r *recordingObserver) OnDrop(_ context.Context, topic string) {
	r.record(fmt.Sprintf("drop:%s", topic))
}

func TestObserver(t *testing.T) {
	ctx := context.Background()

	t.Run("sees the publish lifecycle", func(t *testing.T) {
		obs := &recordingObserver{}
		b := New(WithObserver(obs))

		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "ok", rec.handler("ok")))
		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "x"))

		assert.Equal(t, []string{
			"publish:/Tasks/Created:1",
			"deliver:/Tasks/Created:ok",
		}, obs.signals)
	})

	t.Run("sees drops", func(t *testing.T) {
		obs := &recordingObserver{}
		b := New(WithObserver(obs))

		require.NoError(t, b.Publish(ctx, "/Nobody/Listens", "x"))
		assert.Equal(t, []string{"drop:/Nobody/Listens"}, obs.signals)
	})

	t.Run("sees handler failures", func(t *testing.T) {
		obs := &recordingObserver{}
		b := New(WithObserver(obs))

		boom := errors.New("boom")
		require.NoError(t, b.Subscribe("/Tasks/Created", "bad", failing(boom)))

		err := b.Publish(ctx, "/Tasks/Created", "x")
		require.Error(t, err)
		assert.Equal(t, []string{
			"publish:/Tasks/Created:1",
			"error:/Tasks/Created:bad:boom",
		}, obs.signals)
	})
}

func TestCompositeObserver(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out in order", func(t *testing.T) {
		first := &recordingObserver{}
		second := &recordingObserver{}
		b := New(WithObserver(NewCompositeObserver(first, second)))

		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "ok", rec.handler("ok")))
		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "x"))

		assert.Equal(t, first.signals, second.signals)
		assert.NotEmpty(t, first.signals)
	})

	t.Run("empty composite is a valid observer", func(t *testing.T) {
		b := New(WithObserver(NewCompositeObserver()))
		require.NoError(t, b.Publish(ctx, "/Nobody/Listens", "x"))
	})
}

func TestSlogObserver(t *testing.T) {
	ctx := context.Background()

	t.Run("writes structured lines", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		b := New(WithObserver(SlogObserver(log)))

		rec := &recorder{}
		require.NoError(t, b.Subscribe("/Tasks/Created", "ok", rec.handler("ok")))
		require.NoError(t, b.Publish(ctx, "/Tasks/Created", "x"))
		require.NoError(t, b.Publish(ctx, "/Nobody/Listens", "x"))

		out := buf.String()
		assert.Contains(t, out, "publishing")
		assert.Contains(t, out, "delivered")
		assert.Contains(t, out, "no subscribers")
		assert.Contains(t, out, "topic=/Tasks/Created")
		assert.Contains(t, out, "subscriber=ok")
	})

	t.Run("logs failures at error level", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		b := New(WithObserver(SlogObserver(log)))

		require.NoError(t, b.Subscribe("/Tasks/Created", "bad", failing(errors.New("boom"))))
		require.Error(t, b.Publish(ctx, "/Tasks/Created", "x"))

		out := buf.String()
		assert.Contains(t, out, "level=ERROR")
		assert.Contains(t, out, "delivery failed")
		assert.Contains(t, out, "error=boom")
	})

	t.Run("nil logger falls back to the default", func(t *testing.T) {
		assert.NotNil(t, SlogObserver(nil))
	})
}
