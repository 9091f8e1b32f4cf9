package agent

import (
	"github.com/casualjim/rook/api"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Roster is a name-indexed, insertion-ordered collection of agents. The
// composition root fills it once at startup; its order is the wiring order
// and, per topic, the delivery order.
//
// There is deliberately no package-level roster. Every system builds its own
// and passes it around explicitly.
type Roster struct {
	agents *orderedmap.OrderedMap[string, api.Agent]
}

func NewRoster() *Roster {
	return &Roster{agents: orderedmap.New[string, api.Agent]()}
}

// Add appends agents in order. Re-adding a name replaces the agent but keeps
// its original position.
func (r *Roster) Add(agents ...api.Agent) {
	for _, agent := range agents {
		r.agents.Set(agent.Name(), agent)
	}
}

// Get returns the agent registered under name.
func (r *Roster) Get(name string) (api.Agent, bool) {
	return r.agents.Get(name)
}

// Agents returns all agents in insertion order.
func (r *Roster) Agents() []api.Agent {
	agents := make([]api.Agent, 0, r.agents.Len())
	for pair := r.agents.Oldest(); pair != nil; pair = pair.Next() {
		agents = append(agents, pair.Value)
	}
	return agents
}

// Names returns the agent names in insertion order.
func (r *Roster) Names() []string {
	names := make([]string, 0, r.agents.Len())
	for pair := r.agents.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of registered agents.
func (r *Roster) Len() int {
	return r.agents.Len()
}
