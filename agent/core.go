package agent

import (
	"context"
	"sync"

	"github.com/casualjim/rook/bus"
)

// Core is the embeddable base for agents. It carries the wiring-time bus
// reference and a lazily created scratch Memory. The zero value is ready to
// use, so agent structs embedding Core need no constructor of their own.
//
// Core deliberately implements none of api.Agent; the embedding type decides
// its own name and subscription table. It does satisfy api.BusAttacher, which
// is how the wiring engine hands the shared bus to every agent that embeds it.
type Core struct {
	bus     *bus.Bus
	mem     *Memory
	memOnce sync.Once
}

// AttachBus hands the agent the bus it publishes on. The wiring engine calls
// this once, before any traffic flows; it is not safe to call concurrently
// with Publish.
func (c *Core) AttachBus(b *bus.Bus) {
	c.bus = b
}

// Publish forwards to the attached bus. An agent that never got a bus
// publishes into the void: no error, no delivery. That keeps agents testable
// in isolation, their code paths run the same with or without a bus.
func (c *Core) Publish(ctx context.Context, topic string, payload any) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Publish(ctx, topic, payload)
}

// Wired reports whether a bus has been attached.
func (c *Core) Wired() bool {
	return c.bus != nil
}

// Memory returns the agent's private scratch space, creating it on first use.
func (c *Core) Memory() *Memory {
	c.memOnce.Do(func() {
		c.mem = NewMemory()
	})
	return c.mem
}
