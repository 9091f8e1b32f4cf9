package agent

import (
	"slices"

	"github.com/casualjim/rook/api"
	"github.com/casualjim/rook/bus"
	"github.com/casualjim/rook/contract"
	"github.com/casualjim/rook/pkg/reflectx"
	"github.com/fogfish/opts"
)

var (
	_ api.Agent      = (*defaultAgent)(nil)
	_ api.Contractor = (*defaultAgent)(nil)
	_ api.Dependent  = (*defaultAgent)(nil)
)

// defaultAgent is the declarative agent built by New. It holds nothing but
// its identity, registration table, contracts, and dependency list; handlers
// are the closures handed to On or Handles.
type defaultAgent struct {
	name      string
	bindings  []api.Binding
	contracts []contract.Operation
	dependsOn []string
}

// Name returns the agent's name.
func (a *defaultAgent) Name() string {
	return a.name
}

// Subscriptions returns the agent's registration table in declaration order.
func (a *defaultAgent) Subscriptions() []api.Binding {
	return slices.Clone(a.bindings)
}

// Contracts returns the operations this agent declared, if any.
func (a *defaultAgent) Contracts() []contract.Operation {
	return slices.Clone(a.contracts)
}

// DependsOn returns the names of agents that must be wired before this one.
func (a *defaultAgent) DependsOn() []string {
	return slices.Clone(a.dependsOn)
}

// Name sets the agent's identity. It is required: the wiring engine derives
// subscriber identities from it and the roster keys agents by it.
var Name = opts.ForName[defaultAgent, string]("name")

// On binds fn to topic under the given operation name. Bindings accumulate in
// declaration order, which becomes delivery order on the bus.
func On(topic, op string, fn bus.Handler) opts.Option[defaultAgent] {
	return opts.Type[defaultAgent](func(o *defaultAgent) error {
		o.bindings = append(o.bindings, api.Binding{Topic: topic, Op: op, Fn: fn})
		return nil
	})
}

// Handles binds fn to topic and derives the operation name from the function
// itself. Anonymous handlers come out as the compiler-assigned funcN name;
// use On when the identity matters.
func Handles(topic string, fn bus.Handler) opts.Option[defaultAgent] {
	return opts.Type[defaultAgent](func(o *defaultAgent) error {
		o.bindings = append(o.bindings, api.Binding{Topic: topic, Op: reflectx.FunctionName(fn), Fn: fn})
		return nil
	})
}

// Contract declares one or more operations for the manifest.
func Contract(op contract.Operation, extraOps ...contract.Operation) opts.Option[defaultAgent] {
	return opts.Type[defaultAgent](func(o *defaultAgent) error {
		o.contracts = append(o.contracts, op)
		o.contracts = append(o.contracts, extraOps...)
		return nil
	})
}

// DependsOn declares agents that must be wired before this one.
func DependsOn(name string, extraNames ...string) opts.Option[defaultAgent] {
	return opts.Type[defaultAgent](func(o *defaultAgent) error {
		o.dependsOn = append(o.dependsOn, name)
		o.dependsOn = append(o.dependsOn, extraNames...)
		return nil
	})
}

// New creates a declarative agent from the provided options. It panics when
// an option fails to apply or when no Name was given, both programmer errors
// that should surface at startup.
func New(options ...opts.Option[defaultAgent]) api.Agent {
	agent := &defaultAgent{}
	if err := opts.Apply(agent, options); err != nil {
		panic(err)
	}
	if agent.name == "" {
		panic("agent: Name option is required")
	}
	return agent
}
