package feasibility

import "fmt"

type CoefficientTable map[Mode]ModeCoefficients

// DefaultCoefficients is ordered strictest to most lenient: every weight and
// cutoff is non-increasing from Conservative to Wild.
var DefaultCoefficients = CoefficientTable{
	ModeConservative: {
		RiskWeight:       0.50,
		TimeWeight:       1.00,
		RateWeight:       0.50,
		FeasibleCutoff:   70,
		BorderlineCutoff: 50,
	},
	ModeSafe: {
		RiskWeight:       0.35,
		TimeWeight:       0.60,
		RateWeight:       0.30,
		FeasibleCutoff:   60,
		BorderlineCutoff: 40,
	},
	ModeWild: {
		RiskWeight:       0.20,
		TimeWeight:       0.30,
		RateWeight:       0.15,
		FeasibleCutoff:   45,
		BorderlineCutoff: 30,
	},
}

// For returns the coefficients for mode, falling back to the Safe row.
func (t CoefficientTable) For(mode Mode) ModeCoefficients {
	if c, ok := t[mode]; ok {
		return c
	}
	if c, ok := t[ModeSafe]; ok {
		return c
	}
	return DefaultCoefficients[ModeSafe]
}

// Validate checks that every mode is present and that penalties and cutoffs
// never loosen in the wrong direction between Conservative, Safe and Wild.
func (t CoefficientTable) Validate() error {
	modes := AllModes()
	for _, m := range modes {
		c, ok := t[m]
		if !ok {
			return fmt.Errorf("mode %s: coefficients missing", m)
		}
		if c.RiskWeight < 0 || c.TimeWeight < 0 || c.RateWeight < 0 {
			return fmt.Errorf("mode %s: weights must be >= 0", m)
		}
		if c.BorderlineCutoff < 0 || c.FeasibleCutoff > 100 {
			return fmt.Errorf("mode %s: cutoffs must be within [0,100]", m)
		}
		if c.FeasibleCutoff < c.BorderlineCutoff {
			return fmt.Errorf("mode %s: feasible cutoff %.1f below borderline cutoff %.1f", m, c.FeasibleCutoff, c.BorderlineCutoff)
		}
	}
	for i := 1; i < len(modes); i++ {
		stricter, looser := t[modes[i-1]], t[modes[i]]
		if looser.RiskWeight > stricter.RiskWeight ||
			looser.TimeWeight > stricter.TimeWeight ||
			looser.RateWeight > stricter.RateWeight {
			return fmt.Errorf("mode %s: penalty weights exceed %s", modes[i], modes[i-1])
		}
		if looser.FeasibleCutoff > stricter.FeasibleCutoff || looser.BorderlineCutoff > stricter.BorderlineCutoff {
			return fmt.Errorf("mode %s: cutoffs exceed %s", modes[i], modes[i-1])
		}
	}
	return nil
}
