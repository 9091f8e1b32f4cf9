package rook

import (
	"fmt"

	"github.com/casualjim/rook/api"
)

// orderByDependencies reorders agents so every agent comes after the agents
// its DependsOn names. The sort is layered: each pass takes, in roster order,
// every agent whose dependencies are already placed, so independent agents
// keep their relative registration order and the result is deterministic.
func orderByDependencies(agents []api.Agent) ([]api.Agent, error) {
	known := make(map[string]bool, len(agents))
	for _, ag := range agents {
		known[ag.Name()] = true
	}

	deps := make(map[string][]string, len(agents))
	for _, ag := range agents {
		dependent, ok := ag.(api.Dependent)
		if !ok {
			continue
		}
		for _, name := range dependent.DependsOn() {
			if !known[name] {
				return nil, &WiringError{
					Agent: ag.Name(),
					Err:   fmt.Errorf("depends on unknown agent %q", name),
				}
			}
			deps[ag.Name()] = append(deps[ag.Name()], name)
		}
	}

	placed := make(map[string]bool, len(agents))
	ordered := make([]api.Agent, 0, len(agents))
	for len(ordered) < len(agents) {
		progressed := false
		for _, ag := range agents {
			if placed[ag.Name()] {
				continue
			}
			ready := true
			for _, name := range deps[ag.Name()] {
				if !placed[name] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			ordered = append(ordered, ag)
			placed[ag.Name()] = true
			progressed = true
		}
		if !progressed {
			stuck := make([]string, 0, len(agents)-len(ordered))
			for _, ag := range agents {
				if !placed[ag.Name()] {
					stuck = append(stuck, ag.Name())
				}
			}
			return nil, &CycleError{Stuck: stuck}
		}
	}
	return ordered, nil
}
