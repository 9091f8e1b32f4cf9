// Package agent provides the base building blocks for event-driven agents:
// an embeddable Core that carries the bus reference and scratch memory, a
// declarative constructor for agents that are nothing but a registration
// table, and a Roster that keeps constructed agents in wiring order.
//
// Two ways to build an agent:
//
// Embed Core in a struct when the agent has behavior of its own. The struct
// implements api.Agent by hand and inherits nil-safe publishing and memory
// from the Core:
//
//	type TaskManager struct {
//		agent.Core
//	}
//
//	func (t *TaskManager) Name() string { return "TaskManagerAgent" }
//
//	func (t *TaskManager) Subscriptions() []api.Binding {
//		return []api.Binding{
//			{Topic: "/Auth/UserRegistered", Op: "BufferWelcomeTask", Fn: bus.Typed(t.bufferWelcomeTask)},
//		}
//	}
//
// Use New for leaf agents that only react to topics:
//
//	audit := agent.New(
//		agent.Name("AuditAgent"),
//		agent.Handles("/Tasks/Deleted", logDeletion),
//	)
//
// An agent is fully functional before it is wired: publishing without a bus
// is a silent no-op, so unit tests can drive an agent in isolation and wire
// it up only when the full system is under test.
package agent
