/*
Package rook provides an in-process event runtime: independently built agents
communicate by publishing and subscribing to named topics on a shared message
bus, without holding references to one another.

The package implements a small set of composable pieces:

  - Bus: synchronous topic-based publish/subscribe (package bus)
  - Agents: long-lived units of behavior with explicit subscription tables
  - Contracts: declarative payload schemas and topic metadata for tooling
  - Rookery: the composition root that owns the bus and wires every agent

# Basic Usage

A process builds one Rookery with all of its agents, wires it once, and then
serves traffic. Handlers run synchronously in registration order:

	tasks := agents.NewTaskManager()
	notify := agents.NewNotify(os.Stdout)

	r := rook.Must(
		rook.Agents(tasks, notify),
		rook.Delivery(bus.FailFast),
	)
	if err := r.Wire(ctx); err != nil {
		return err
	}

	// any mutation publishes after it succeeds
	err := r.Bus().Publish(ctx, "/Tasks/Created", topics.TaskCreated{TaskID: id})

# Architecture

1. Bus (bus/)
  - Owns the topic table: topic name to ordered subscription list
  - Publish is synchronous and sequential; it returns after the last handler
  - Failure policy is per bus: fail-fast (default) or collect

2. Agents (api/, agent/)
  - api.Agent is a name plus an explicit []api.Binding registration table
  - Optional capabilities are plain interfaces discovered at wiring time:
    api.Contractor, api.Dependent, api.BusAttacher
  - agent.Core gives hand-written agents nil-safe publishing and memory

3. Contracts (contract/)
  - Operations declare topics and JSON Schemas of payloads, reflected once
  - Manifest and Lint turn declarations into docs and drift findings
  - Never consulted during dispatch

4. Wiring (rook.go)
  - Walks agents in roster order, or topologically with OrderByDependencies
  - Registers every binding as "<AgentName>.<Op>" on the bus
  - One-shot: run it exactly once before traffic; re-running doubles
    subscriptions

# Delivery Semantics

Publishing to a topic nobody subscribed to is a legal no-op. Subscribers of a
topic run in registration order, each receiving the same payload value, and
the publisher blocks until the last one returns. A handler may publish while
handling, the nested dispatch completes before the outer one resumes. There
is no unsubscribe, no buffering, no redelivery, and no cross-topic ordering.

# Thread Safety

The topic table is written during wiring and read on every publish. Wire
before serving and the steady state is read-only, safe for any number of
concurrent publishers. Payloads cross goroutines by reference: by convention
they are immutable once published, and handlers that want to retain or mutate
one must copy it. Agent-private state is the agent's own concern; agent.Memory
is safe for concurrent use.

For component details see the bus, agent, and contract package docs.
*/
package rook
