package projection

import (
	"fmt"
	"slices"
)

// Workspace is caller-owned projection state. Every update returns a new
// Workspace and leaves the receiver untouched.
type Workspace struct {
	BaseRevenue float64          `json:"base_revenue" yaml:"base_revenue"`
	Months      int              `json:"months" yaml:"months"`
	Scenarios   []ScenarioParams `json:"scenarios" yaml:"scenarios"`
}

func NewWorkspace() Workspace {
	return Workspace{
		BaseRevenue: DefaultBaseRevenue,
		Months:      DefaultMonths,
		Scenarios:   DefaultScenarios(),
	}
}

func (w Workspace) clone() Workspace {
	w.Scenarios = slices.Clone(w.Scenarios)
	return w
}

func (w Workspace) WithBaseRevenue(v float64) Workspace {
	out := w.clone()
	out.BaseRevenue = v
	return out
}

func (w Workspace) WithMonths(n int) Workspace {
	out := w.clone()
	if n < 0 {
		n = 0
	}
	out.Months = n
	return out
}

// Upsert replaces the scenario with the same ID, or appends it. A scenario
// without an ID gets the first free "scenario-N" and is always appended.
func (w Workspace) Upsert(p ScenarioParams) Workspace {
	out := w.clone()
	if p.ID == "" {
		p.ID = out.freeID()
	}
	for i := range out.Scenarios {
		if out.Scenarios[i].ID == p.ID {
			out.Scenarios[i] = p
			return out
		}
	}
	out.Scenarios = append(out.Scenarios, p)
	return out
}

// Append adds p even when its ID is already present. Only a blank ID is filled in.
func (w Workspace) Append(p ScenarioParams) Workspace {
	out := w.clone()
	if p.ID == "" {
		p.ID = out.freeID()
	}
	out.Scenarios = append(out.Scenarios, p)
	return out
}

func (w Workspace) freeID() string {
	for n := len(w.Scenarios) + 1; ; n++ {
		id := fmt.Sprintf("scenario-%d", n)
		if _, taken := w.Scenario(id); !taken {
			return id
		}
	}
}

func (w Workspace) Remove(id string) Workspace {
	out := w.clone()
	out.Scenarios = slices.DeleteFunc(out.Scenarios, func(p ScenarioParams) bool { return p.ID == id })
	return out
}

func (w Workspace) Scenario(id string) (ScenarioParams, bool) {
	for _, p := range w.Scenarios {
		if p.ID == id {
			return p, true
		}
	}
	return ScenarioParams{}, false
}

func (w Workspace) Evaluate() (Analysis, error) {
	return Analyze(w.Scenarios, w.BaseRevenue, w.Months)
}
