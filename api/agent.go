// Package api holds the interfaces that agents implement and the wiring
// engine consumes. It sits below every other package on purpose: agents
// depend on api, the runtime depends on api, and neither needs the other.
package api

import (
	"github.com/casualjim/rook/bus"
	"github.com/casualjim/rook/contract"
)

// Agent is the core interface for event-driven participants in the system.
// It defines the minimal surface the wiring engine needs: a stable name and
// an explicit table of subscriptions.
//
// Design decisions:
//   - Explicit registration: Subscriptions returns a literal table instead of
//     the engine discovering handlers by reflection. What an agent listens to
//     is visible in one place and survives renames.
//   - Minimal interface: everything beyond name and subscriptions is an
//     optional capability, checked with a type assertion at wiring time.
//   - Immutable view: both methods return values; an agent's identity and
//     subscription table do not change after construction.
//
// Example usage:
//
//	for _, binding := range agent.Subscriptions() {
//	    bus.Subscribe(binding.Topic, agent.Name()+"."+binding.Op, binding.Fn)
//	}
//
// The interface is implementation-agnostic: hand-written structs, the
// option-built agents from the agent package, and generated bindings all
// satisfy it the same way.
type Agent interface {
	// Name returns the agent's unique identifier.
	// This name should be consistent across runs and is used for logging,
	// subscriber identity, and dependency declarations between agents.
	Name() string

	// Subscriptions returns the agent's registration table: one Binding per
	// topic the agent wants to receive. Order matters, the wiring engine
	// registers bindings in the order returned here.
	Subscriptions() []Binding
}

// Binding associates one topic with one named operation of an agent. The
// wiring engine turns each binding into a bus subscription whose subscriber
// identity is "<agent name>.<op>".
type Binding struct {
	// Topic is the full topic path, e.g. "/Tasks/Created".
	Topic string
	// Op names the operation for observability and contract linting. It is
	// not required to be unique, an agent may bind the same op to several
	// topics.
	Op string
	// Fn is the handler invoked for every message on Topic.
	Fn bus.Handler
}

// Contractor is an optional capability: agents that declare their event
// contracts implement it. Contracts are documentation, the runtime collects
// them into a manifest but never consults them during dispatch.
type Contractor interface {
	Contracts() []contract.Operation
}

// Dependent is an optional capability: agents that want to be wired after
// other agents implement it. DependsOn returns the names of those agents.
// Dependencies order wiring, they never gate message delivery.
type Dependent interface {
	DependsOn() []string
}

// BusAttacher is an optional capability: agents that publish implement it to
// receive the shared bus during wiring. Agents that never got a bus must
// treat publishing as a no-op.
type BusAttacher interface {
	AttachBus(b *bus.Bus)
}
