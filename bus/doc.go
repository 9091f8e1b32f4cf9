// Package bus implements a synchronous in-process message bus for
// distributing events between agents and other application components. It
// provides a minimal topic-based publish/subscribe surface with deterministic
// delivery.
//
// Design decisions:
//   - Synchronous dispatch: Publish runs every handler on the caller's
//     goroutine and returns only after the last handler returns. There are no
//     worker pools, channels, or buffers between publisher and subscriber.
//   - Deterministic order: handlers run in registration order, every time.
//   - Append-only registry: subscriptions cannot be removed. The topic table
//     is written during startup wiring and read on every publish.
//   - Topics are cheap: publishing to a topic nobody subscribed to is a
//     legal no-op, not an error.
//   - Context-first: Publish accepts a context.Context which is handed to
//     every handler untouched. The bus itself never inspects the context
//     between handlers; cancellation is the handlers' concern.
//   - No hidden observability: the bus never logs and never records metrics
//     on its own. Everything it knows is exposed through the Observer hooks.
//
// Failure handling comes in two flavors, chosen at construction time:
//
//   - FailFast (default): the first handler error aborts the remaining
//     handlers and is returned to the publisher wrapped in *PublishError.
//   - Collect: every handler runs; failures are aggregated with errors.Join,
//     one *PublishError per failed subscriber.
//
// Reentrancy is legal: a handler may publish to the same bus (even the same
// topic) while being delivered to. By default recursion is unbounded, same as
// calling functions recursively; WithMaxDepth installs a guard that fails a
// publish once the nesting limit is reached.
//
// Example usage:
//
//	b := bus.New(bus.WithDelivery(bus.Collect))
//
//	err := b.Subscribe("/Auth/UserRegistered", "TaskManager.CreateWelcomeTask",
//		bus.Typed(func(ctx context.Context, p topics.UserRegistered) error {
//			return tasks.BufferWelcome(ctx, p.UserID)
//		}))
//	if err != nil {
//		return err
//	}
//
//	if err := b.Publish(ctx, "/Auth/UserRegistered", payload); err != nil {
//		var perr *bus.PublishError
//		if errors.As(err, &perr) {
//			log.Error("delivery failed", slogx.Subscriber(perr.Subscriber))
//		}
//	}
package bus
