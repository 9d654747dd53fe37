package feasibility

import (
	"math"
)

// ComputeFeasibility discounts a perfect score of 100 by the present-value
// factor of the combined rate over the ROI horizon, then subtracts the mode's
// risk, timeline-overrun and rate penalties. It never fails: non-finite
// intermediate results collapse to 0 and the score is clamped to [0,100].
func ComputeFeasibility(mode Mode, in DerivedInputs, c ModeCoefficients) ModeResult {
	combinedRate := (in.TimeValue + in.InterestRate) / 100.0
	years := math.Max(in.ROITime, 0) / 12.0

	pvFactor := 1.0
	if years > 0 {
		pvFactor = 1.0 / math.Pow(1+combinedRate, years)
	}
	baseScore := 100 * pvFactor

	riskPenalty := float64(in.Risk) * c.RiskWeight
	timelinePenalty := math.Max(0, in.ROITime-in.LengthTimeFactor) * c.TimeWeight
	ratePenalty := combinedRate * 100 * c.RateWeight

	raw := baseScore - riskPenalty - timelinePenalty - ratePenalty
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 0
	}
	score := int(math.Round(clampFloat(raw, 0, 100)))

	return ModeResult{
		Mode:         mode,
		Score:        score,
		Verdict:      verdictFor(score, c),
		PVFactor:     pvFactor,
		CombinedRate: combinedRate,
		Details: ScoreDetails{
			RiskPenalty:      riskPenalty,
			TimelinePenalty:  timelinePenalty,
			RatePenalty:      ratePenalty,
			FeasibleCutoff:   c.FeasibleCutoff,
			BorderlineCutoff: c.BorderlineCutoff,
		},
	}
}

// ScoreAllModes scores the same inputs once per mode.
func ScoreAllModes(in DerivedInputs, table CoefficientTable) map[Mode]ModeResult {
	out := make(map[Mode]ModeResult, len(AllModes()))
	for _, m := range AllModes() {
		out[m] = ComputeFeasibility(m, in, table.For(m))
	}
	return out
}

func verdictFor(score int, c ModeCoefficients) Verdict {
	s := float64(score)
	switch {
	case s >= c.FeasibleCutoff:
		return VerdictFeasible
	case s >= c.BorderlineCutoff:
		return VerdictBorderline
	default:
		return VerdictNotFeasible
	}
}
