package rook

import (
	"github.com/casualjim/rook/api"
	"github.com/casualjim/rook/contract"
)

// Manifest collects the contracts of every registered agent that declares
// any, grouped by agent in roster order. Agents without contracts simply do
// not appear.
func (r *Rookery) Manifest() *contract.Manifest {
	m := contract.NewManifest()
	for _, ag := range r.roster.Agents() {
		declarer, ok := ag.(api.Contractor)
		if !ok {
			continue
		}
		if ops := declarer.Contracts(); len(ops) > 0 {
			m.Add(ag.Name(), ops...)
		}
	}
	return m
}

// Validate lints the declared contracts against the wired topology. Run it
// after Wire; against an unwired rookery every declared subscription comes
// back as a finding. Findings are advisory; they never gate wiring or
// dispatch.
func (r *Rookery) Validate() []contract.Finding {
	return contract.Lint(r.Manifest(), r.bus)
}
