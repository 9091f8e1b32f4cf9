package rook

import (
	"context"
	"testing"

	"github.com/casualjim/rook/agent"
	"github.com/casualjim/rook/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(agents []api.Agent) []string {
	out := make([]string, len(agents))
	for i, ag := range agents {
		out[i] = ag.Name()
	}
	return out
}

func TestOrderByDependencies(t *testing.T) {
	ctx := context.Background()

	t.Run("dependencies wire first", func(t *testing.T) {
		rec := &probe{}
		// roster order is deliberately backwards: auth before registration
		auth := agent.New(
			agent.Name("AuthAgent"),
			agent.DependsOn("UserRegistrationAgent"),
			agent.On("/Auth/UserRegistered", "OnUserRegistered", rec.handler("auth")),
		)
		registration := agent.New(
			agent.Name("UserRegistrationAgent"),
			agent.On("/Auth/UserRegistered", "Audit", rec.handler("registration")),
		)

		r := Must(Agents(auth, registration), OrderByDependencies())
		require.NoError(t, r.Wire(ctx))

		// registration's subscription lands before auth's
		assert.Equal(t, []string{
			"UserRegistrationAgent.Audit",
			"AuthAgent.OnUserRegistered",
		}, r.Bus().Subscribers("/Auth/UserRegistered"))
	})

	t.Run("independent agents keep roster order", func(t *testing.T) {
		a := agent.New(agent.Name("A"))
		b := agent.New(agent.Name("B"))
		c := agent.New(agent.Name("C"), agent.DependsOn("A"))

		ordered, err := orderByDependencies([]api.Agent{a, b, c})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, names(ordered))
	})

	t.Run("chains resolve transitively", func(t *testing.T) {
		a := agent.New(agent.Name("A"), agent.DependsOn("B"))
		b := agent.New(agent.Name("B"), agent.DependsOn("C"))
		c := agent.New(agent.Name("C"))

		ordered, err := orderByDependencies([]api.Agent{a, b, c})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B", "A"}, names(ordered))
	})

	t.Run("unknown dependency fails wiring", func(t *testing.T) {
		a := agent.New(agent.Name("AuthAgent"), agent.DependsOn("GhostAgent"))

		r := Must(Agents(a), OrderByDependencies())
		err := r.Wire(ctx)
		require.Error(t, err)

		var werr *WiringError
		require.ErrorAs(t, err, &werr)
		assert.Equal(t, "AuthAgent", werr.Agent)
		assert.Contains(t, err.Error(), `unknown agent "GhostAgent"`)
	})

	t.Run("cycles are detected", func(t *testing.T) {
		a := agent.New(agent.Name("A"), agent.DependsOn("B"))
		b := agent.New(agent.Name("B"), agent.DependsOn("A"))

		r := Must(Agents(a, b), OrderByDependencies())
		err := r.Wire(ctx)
		require.Error(t, err)

		var cerr *CycleError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, []string{"A", "B"}, cerr.Stuck)
		assert.Contains(t, err.Error(), "dependency cycle")
	})

	t.Run("self dependency is a cycle", func(t *testing.T) {
		a := agent.New(agent.Name("A"), agent.DependsOn("A"))

		_, err := orderByDependencies([]api.Agent{a})
		var cerr *CycleError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, []string{"A"}, cerr.Stuck)
	})

	t.Run("without the option declarations are advisory", func(t *testing.T) {
		// same backwards roster as above, but no OrderByDependencies: wiring
		// follows roster order and the dependency list changes nothing
		auth := agent.New(agent.Name("AuthAgent"), agent.DependsOn("UserRegistrationAgent"))
		registration := agent.New(agent.Name("UserRegistrationAgent"))

		r := Must(Agents(auth, registration))
		require.NoError(t, r.Wire(ctx))
		assert.Equal(t, []string{"AuthAgent", "UserRegistrationAgent"}, names(r.Agents()))
	})
}
