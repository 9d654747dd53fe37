package feasibility

import (
	"fmt"
	"sort"
)

// Sensitivity moves one input at a time by a fixed step in both directions
// and reports how far the score swings, largest swing first.
func Sensitivity(mode Mode, base DerivedInputs, c ModeCoefficients) []SensitivityDriver {
	type candidate struct {
		name      string
		step      float64
		low       func() DerivedInputs
		high      func() DerivedInputs
		direction string
	}

	cands := []candidate{
		{name: "risk", step: 10, low: func() DerivedInputs {
			b := base
			b.Risk = clampInt(b.Risk-10, 0, 100)
			return b
		}, high: func() DerivedInputs {
			b := base
			b.Risk = clampInt(b.Risk+10, 0, 100)
			return b
		}, direction: "Lower execution risk raises the score"},
		{name: "roi_time", step: 6, low: func() DerivedInputs {
			b := base
			b.ROITime = max(b.ROITime-6, 0)
			return b
		}, high: func() DerivedInputs {
			b := base
			b.ROITime += 6
			return b
		}, direction: "Faster return raises the score"},
		{name: "interest_rate", step: 2, low: func() DerivedInputs {
			b := base
			b.InterestRate = max(b.InterestRate-2, 0)
			return b
		}, high: func() DerivedInputs {
			b := base
			b.InterestRate += 2
			return b
		}, direction: "Cheaper capital raises the score"},
		{name: "time_value", step: 2, low: func() DerivedInputs {
			b := base
			b.TimeValue = max(b.TimeValue-2, 0)
			return b
		}, high: func() DerivedInputs {
			b := base
			b.TimeValue += 2
			return b
		}, direction: "A lower discount rate raises the score"},
	}

	out := make([]SensitivityDriver, 0, len(cands))
	for _, cand := range cands {
		sLow := ComputeFeasibility(mode, cand.low(), c).Score
		sHigh := ComputeFeasibility(mode, cand.high(), c).Score
		delta := sLow - sHigh
		if delta < 0 {
			delta = -delta
		}
		out = append(out, SensitivityDriver{
			Input:      cand.name,
			Step:       cand.step,
			ScoreDelta: delta,
			Direction:  fmt.Sprintf("%s by up to %d points", cand.direction, delta),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScoreDelta > out[j].ScoreDelta })
	return out
}
