package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/sjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Declarer is anything that can state its own contract. It is deliberately a
// local interface so this package stays independent of the agent plumbing;
// agents satisfy it structurally.
type Declarer interface {
	Name() string
	Contracts() []Operation
}

// Topology is the wired view of a bus: which topics exist and who subscribes
// to them. *bus.Bus satisfies it.
type Topology interface {
	Topics() []string
	Subscribers(topic string) []string
}

// Manifest is the collected contract surface of a system, grouped by agent in
// insertion order.
type Manifest struct {
	agents      *orderedmap.OrderedMap[string, []Operation]
	generatedAt strfmt.DateTime
}

func NewManifest() *Manifest {
	return &Manifest{
		agents:      orderedmap.New[string, []Operation](),
		generatedAt: strfmt.DateTime(time.Now()),
	}
}

// BuildManifest collects contracts from every declarer, keeping the order the
// declarers were given in.
func BuildManifest(declarers ...Declarer) *Manifest {
	m := NewManifest()
	for _, d := range declarers {
		m.Add(d.Name(), d.Contracts()...)
	}
	return m
}

// Add appends operations under the named agent.
func (m *Manifest) Add(agent string, operations ...Operation) {
	existing, _ := m.agents.Get(agent)
	m.agents.Set(agent, append(existing, operations...))
}

// Agents returns the agent names in insertion order.
func (m *Manifest) Agents() []string {
	names := make([]string, 0, m.agents.Len())
	for pair := m.agents.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Operations returns the operations declared by the named agent.
func (m *Manifest) Operations(agent string) []Operation {
	ops, _ := m.agents.Get(agent)
	return ops
}

var manifestJSON = []byte(`{"kind":"manifest"}`)

// MarshalJSON implements custom JSON marshaling for Manifest
func (m *Manifest) MarshalJSON() ([]byte, error) {
	result := manifestJSON

	var err error
	result, err = sjson.SetBytes(result, "generated_at", m.generatedAt.String())
	if err != nil {
		return nil, err
	}

	agentsBytes, err := json.Marshal(m.agents)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agents: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "agents", agentsBytes)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Markdown renders the manifest as a human-readable document, suitable for a
// terminal renderer or a docs page.
func (m *Manifest) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Event Contracts\n\n")
	fmt.Fprintf(&sb, "Generated at %s.\n\n", m.generatedAt)

	for pair := m.agents.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&sb, "## %s\n\n", pair.Key)
		for _, op := range pair.Value {
			fmt.Fprintf(&sb, "### %s\n\n", op.Name)
			if op.Description != "" {
				sb.WriteString(op.Description)
				sb.WriteString("\n\n")
			}
			if op.Topic != "" {
				fmt.Fprintf(&sb, "- subscribes to `%s`\n", op.Topic)
			}
			for _, topic := range op.Publishes {
				fmt.Fprintf(&sb, "- publishes `%s`\n", topic)
			}
			if op.Topic != "" || len(op.Publishes) > 0 {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// Severity grades a lint finding.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Finding is one discrepancy between declared contracts and wired topology.
type Finding struct {
	Severity Severity
	Topic    string
	Agent    string
	Detail   string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Topic, f.Detail)
}

// Lint cross-checks the manifest against the wired topology. It reports:
//
//   - declared subscriptions that are not wired (warn)
//   - declared published topics nobody subscribes to (warn)
//   - wired subscriptions of contract-declaring agents that are not declared (warn)
//   - publisher output schemas disagreeing with subscriber input schemas on
//     the same topic (error)
//
// Findings are advisory. Nothing here gates wiring or dispatch.
func Lint(m *Manifest, topo Topology) []Finding {
	var findings []Finding

	wired := make(map[string]map[string]bool)
	for _, topic := range topo.Topics() {
		subs := make(map[string]bool)
		for _, name := range topo.Subscribers(topic) {
			subs[name] = true
		}
		wired[topic] = subs
	}

	type schemaRef struct {
		agent, op string
		schema    Operation
	}
	inputs := make(map[string][]schemaRef)
	outputs := make(map[string][]schemaRef)
	declaredAgents := make(map[string]bool)
	declaredSubs := make(map[string]map[string]bool)

	for _, agent := range m.Agents() {
		declaredAgents[agent] = true
		for _, op := range m.Operations(agent) {
			subscriber := agent + "." + op.Name

			if op.Topic != "" {
				if declaredSubs[op.Topic] == nil {
					declaredSubs[op.Topic] = make(map[string]bool)
				}
				declaredSubs[op.Topic][subscriber] = true

				if !wired[op.Topic][subscriber] {
					findings = append(findings, Finding{
						Severity: SeverityWarn,
						Topic:    op.Topic,
						Agent:    agent,
						Detail:   fmt.Sprintf("declared subscription %s is not wired", subscriber),
					})
				}
				if op.Input != nil {
					inputs[op.Topic] = append(inputs[op.Topic], schemaRef{agent: agent, op: op.Name, schema: op})
				}
			}

			for _, topic := range op.Publishes {
				if len(wired[topic]) == 0 {
					findings = append(findings, Finding{
						Severity: SeverityWarn,
						Topic:    topic,
						Agent:    agent,
						Detail:   fmt.Sprintf("%s publishes %s but nothing subscribes to it", subscriber, topic),
					})
				}
				if op.Output != nil {
					outputs[topic] = append(outputs[topic], schemaRef{agent: agent, op: op.Name, schema: op})
				}
			}
		}
	}

	// wired subscriptions nobody declared, judged only for agents that
	// declare contracts at all
	for _, topic := range topo.Topics() {
		for _, name := range topo.Subscribers(topic) {
			agentName, _, ok := strings.Cut(name, ".")
			if !ok || !declaredAgents[agentName] {
				continue
			}
			if !declaredSubs[topic][name] {
				findings = append(findings, Finding{
					Severity: SeverityWarn,
					Topic:    topic,
					Agent:    agentName,
					Detail:   fmt.Sprintf("wired subscription %s is not declared", name),
				})
			}
		}
	}

	topics := make([]string, 0, len(outputs))
	for topic := range outputs {
		topics = append(topics, topic)
	}
	slices.Sort(topics)

	for _, topic := range topics {
		for _, out := range outputs[topic] {
			for _, in := range inputs[topic] {
				if !schemasAgree(out.schema.Output, in.schema.Input) {
					findings = append(findings, Finding{
						Severity: SeverityError,
						Topic:    topic,
						Agent:    in.agent,
						Detail: fmt.Sprintf("input schema of %s.%s disagrees with output schema of %s.%s",
							in.agent, in.op, out.agent, out.op),
					})
				}
			}
		}
	}

	return findings
}
