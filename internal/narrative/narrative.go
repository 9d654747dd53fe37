package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

const systemPrompt = "You are a pragmatic small-business analyst. Explain feasibility scores to founders in plain English. " +
	"Respond with two to four sentences of prose only: no headings, no lists, no JSON."

// ErrEmptyNarrative is returned when a provider answers with no text.
var ErrEmptyNarrative = errors.New("empty narrative")

type Request struct {
	ReportID string
	IdeaText string
	Mode     feasibility.Mode
	Result   feasibility.ModeResult
	Inputs   feasibility.DerivedInputs
}

// Generator produces a best-effort explanation of one mode's result.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Event carries a finished narrative back to whoever owns the report.
type Event struct {
	ReportID string           `json:"report_id"`
	Mode     feasibility.Mode `json:"mode"`
	Text     string           `json:"text"`
}

func BuildPrompt(req Request) string {
	r := req.Result
	var b strings.Builder
	fmt.Fprintf(&b, "Business idea:\n%s\n\n", strings.TrimSpace(req.IdeaText))
	fmt.Fprintf(&b, "Risk posture: %s\n", req.Mode.Label())
	fmt.Fprintf(&b, "Feasibility score: %d/100 (%s). Feasible at >= %.0f, borderline at >= %.0f.\n",
		r.Score, r.Verdict, r.Details.FeasibleCutoff, r.Details.BorderlineCutoff)
	fmt.Fprintf(&b, "Present-value factor: %.3f at a combined annual rate of %.1f%%.\n", r.PVFactor, r.CombinedRate*100)
	fmt.Fprintf(&b, "Penalties: risk %.1f, timeline overrun %.1f, cost of capital %.1f.\n",
		r.Details.RiskPenalty, r.Details.TimelinePenalty, r.Details.RatePenalty)
	fmt.Fprintf(&b, "Inputs: risk %d/100, %.0f months to ROI against an acceptable %.0f months, interest %.1f%%, time value %.1f%%.\n\n",
		req.Inputs.Risk, req.Inputs.ROITime, req.Inputs.LengthTimeFactor, req.Inputs.InterestRate, req.Inputs.TimeValue)
	fmt.Fprintf(&b, "Explain why the idea lands at this verdict under the %s posture and name the single biggest lever to improve it.",
		strings.ToLower(req.Mode.Label()))
	return b.String()
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
