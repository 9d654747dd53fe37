package feasibility

import "time"

const Disclaimer = "This is an automated, heuristic feasibility screen, not a valuation or investment recommendation. " +
	"Inputs are inferred from free text and fall back to configured defaults when the description is silent."

// MaxTags bounds the keyword tags attached to a report.
const MaxTags = 4

type Mode string

const (
	ModeConservative Mode = "conservative"
	ModeSafe         Mode = "safe"
	ModeWild         Mode = "wild"
)

// AllModes returns every mode, strictest first.
func AllModes() []Mode {
	return []Mode{ModeConservative, ModeSafe, ModeWild}
}

func (m Mode) Valid() bool {
	switch m {
	case ModeConservative, ModeSafe, ModeWild:
		return true
	}
	return false
}

func (m Mode) Label() string {
	switch m {
	case ModeConservative:
		return "Conservative"
	case ModeSafe:
		return "Safe"
	case ModeWild:
		return "Wild"
	default:
		return string(m)
	}
}

type Verdict string

const (
	VerdictFeasible    Verdict = "Feasible"
	VerdictBorderline  Verdict = "Borderline"
	VerdictNotFeasible Verdict = "Not Feasible"
)

type DerivedInputs struct {
	Risk             int     `json:"risk" validate:"gte=0,lte=100"`
	TimeValue        float64 `json:"time_value" validate:"gte=0"`
	ROITime          float64 `json:"roi_time" validate:"gte=0"`
	LengthTimeFactor float64 `json:"length_time_factor" validate:"gte=0"`
	InterestRate     float64 `json:"interest_rate" validate:"gte=0,lte=100"`
}

type ModeCoefficients struct {
	RiskWeight       float64 `json:"risk_weight" yaml:"risk_weight" validate:"gte=0"`
	TimeWeight       float64 `json:"time_weight" yaml:"time_weight" validate:"gte=0"`
	RateWeight       float64 `json:"rate_weight" yaml:"rate_weight" validate:"gte=0"`
	FeasibleCutoff   float64 `json:"feasible_cutoff" yaml:"feasible_cutoff" validate:"gte=0,lte=100"`
	BorderlineCutoff float64 `json:"borderline_cutoff" yaml:"borderline_cutoff" validate:"gte=0,lte=100"`
}

type ScoreDetails struct {
	RiskPenalty      float64 `json:"risk_penalty"`
	TimelinePenalty  float64 `json:"timeline_penalty"`
	RatePenalty      float64 `json:"rate_penalty"`
	FeasibleCutoff   float64 `json:"feasible_cutoff"`
	BorderlineCutoff float64 `json:"borderline_cutoff"`
}

type ModeResult struct {
	Mode         Mode         `json:"mode"`
	Score        int          `json:"score"`
	Verdict      Verdict      `json:"verdict"`
	PVFactor     float64      `json:"pv_factor"`
	CombinedRate float64      `json:"combined_rate"`
	Details      ScoreDetails `json:"details"`
	Narrative    *string      `json:"narrative"`
}

// HasNarrative reports whether the async narrative has landed.
func (r ModeResult) HasNarrative() bool {
	return r.Narrative != nil && *r.Narrative != ""
}

type FeasibilityReport struct {
	ID            string              `json:"id"`
	Idea          string              `json:"idea"`
	CreatedAt     time.Time           `json:"created_at"`
	Tags          []string            `json:"tags"`
	DerivedInputs DerivedInputs       `json:"derived_inputs"`
	ResultsByMode map[Mode]ModeResult `json:"results_by_mode"`
}

// MissingNarratives lists the modes still waiting on a narrative.
func (r FeasibilityReport) MissingNarratives() []Mode {
	var out []Mode
	for _, m := range AllModes() {
		res, ok := r.ResultsByMode[m]
		if ok && !res.HasNarrative() {
			out = append(out, m)
		}
	}
	return out
}

type SensitivityDriver struct {
	Input      string  `json:"input"`
	Step       float64 `json:"step"`
	ScoreDelta int     `json:"score_delta"`
	Direction  string  `json:"direction"`
}
