package rook

import (
	"context"
	"errors"
	"log/slog"

	"github.com/casualjim/rook/agent"
	"github.com/casualjim/rook/api"
	"github.com/casualjim/rook/bus"
	"github.com/casualjim/rook/pkg/slogx"
	"github.com/casualjim/rook/pkg/stdx"
	"github.com/fogfish/opts"
)

// Rookery is the composition root: it owns the bus, the roster of agents, and
// the wiring between them. A process builds exactly one Rookery at startup,
// wires it, and only then lets traffic reach the agents. There is no global
// instance; whatever serves external requests receives the Rookery (or its
// agents) explicitly.
type Rookery struct {
	bus      *bus.Bus
	roster   *agent.Roster
	observer bus.Observer
	delivery bus.Delivery
	ordered  bool
}

// Agents registers agents with the rookery, in order. Registration order is
// wiring order and, per topic, delivery order, unless OrderByDependencies
// rearranges it.
func Agents(agent api.Agent, extraAgents ...api.Agent) opts.Option[Rookery] {
	return opts.Type[Rookery](func(o *Rookery) error {
		o.roster.Add(agent)
		o.roster.Add(extraAgents...)
		return nil
	})
}

// OrderByDependencies makes Wire sort agents topologically by their declared
// DependsOn lists before subscribing them. Agents without dependencies keep
// their registration order. Unknown dependency names fail with *WiringError,
// cycles with *CycleError.
func OrderByDependencies() opts.Option[Rookery] {
	return opts.Type[Rookery](func(o *Rookery) error {
		o.ordered = true
		return nil
	})
}

var (
	// Bus supplies a pre-built bus instead of the one New constructs. It
	// cannot be combined with Observer or Delivery; configure the supplied
	// bus directly.
	Bus = opts.ForName[Rookery, *bus.Bus]("bus")
	// Observer installs an instrumentation sink on the bus New constructs.
	Observer = opts.ForName[Rookery, bus.Observer]("observer")
	// Delivery selects the failure policy of the bus New constructs.
	Delivery = opts.ForName[Rookery, bus.Delivery]("delivery")
)

// New builds a Rookery. Without a Bus option it constructs its own bus from
// the Observer and Delivery options.
func New(options ...opts.Option[Rookery]) (*Rookery, error) {
	r := &Rookery{
		roster:   agent.NewRoster(),
		delivery: bus.FailFast,
	}
	if err := opts.Apply(r, options); err != nil {
		return nil, err
	}

	if r.bus != nil {
		if r.observer != nil || r.delivery != bus.FailFast {
			return nil, errors.New("rook: Bus cannot be combined with Observer or Delivery")
		}
		return r, nil
	}

	busOpts := []opts.Option[bus.Bus]{bus.WithDelivery(r.delivery)}
	if r.observer != nil {
		busOpts = append(busOpts, bus.WithObserver(r.observer))
	}
	r.bus = bus.New(busOpts...)
	return r, nil
}

// Must is New for composition roots assembled in main, where a bad option set
// should end the process.
func Must(options ...opts.Option[Rookery]) *Rookery {
	return stdx.Must1(New(options...))
}

// Wire registers every agent's subscriptions with the bus and attaches the
// bus to agents that accept one. It walks agents in roster order, or in
// dependency order under OrderByDependencies, and within an agent in the
// order Subscriptions returned; that combined order is the delivery order.
//
// Call it exactly once, after all agents are constructed and before any
// external traffic reaches them. Re-running is legal for tests but doubles
// every subscription; there is no unsubscribe.
func (r *Rookery) Wire(ctx context.Context) error {
	agents := r.roster.Agents()
	if r.ordered {
		ordered, err := orderByDependencies(agents)
		if err != nil {
			return err
		}
		agents = ordered
	}

	log := slog.Default()
	for _, ag := range agents {
		if attacher, ok := ag.(api.BusAttacher); ok {
			attacher.AttachBus(r.bus)
		}
		for _, binding := range ag.Subscriptions() {
			subscriber := ag.Name() + "." + binding.Op
			if err := r.bus.Subscribe(binding.Topic, subscriber, binding.Fn); err != nil {
				return &WiringError{Agent: ag.Name(), Topic: binding.Topic, Op: binding.Op, Err: err}
			}
			log.InfoContext(ctx, "wired",
				slogx.AgentName(ag.Name()),
				slogx.Op(binding.Op),
				slogx.Topic(binding.Topic),
			)
		}
	}
	return nil
}

// Bus returns the rookery's bus, for publishers outside the agent set and
// for introspection.
func (r *Rookery) Bus() *bus.Bus {
	return r.bus
}

// Agents returns the registered agents in roster order.
func (r *Rookery) Agents() []api.Agent {
	return r.roster.Agents()
}
