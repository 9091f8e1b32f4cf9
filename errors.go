package rook

import (
	"fmt"
	"strings"
)

// WiringError reports a binding or dependency declaration the wiring engine
// rejected. Wiring stops at the first bad binding; subscriptions registered
// before it remain on the bus.
type WiringError struct {
	Err   error
	Agent string
	Topic string
	Op    string
}

func (e *WiringError) Error() string {
	if e.Topic == "" && e.Op == "" {
		return fmt.Sprintf("wire %s: %v", e.Agent, e.Err)
	}
	return fmt.Sprintf("wire %s.%s to %s: %v", e.Agent, e.Op, e.Topic, e.Err)
}

func (e *WiringError) Unwrap() error { return e.Err }

// CycleError reports that OrderByDependencies could not find a wiring order
// because the declared dependencies form a cycle. Stuck lists the agents that
// could not be placed, in roster order.
type CycleError struct {
	Stuck []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among agents: %s", strings.Join(e.Stuck, ", "))
}
