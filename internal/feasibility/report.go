package feasibility

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Analyzer turns idea text into a fully scored report.
type Analyzer struct {
	Extractor    *Extractor
	Coefficients CoefficientTable
	Clock        func() time.Time
	NewID        func() string
}

func NewAnalyzer(ex *Extractor, table CoefficientTable) *Analyzer {
	if ex == nil {
		ex = defaultExtractor
	}
	if table == nil {
		table = DefaultCoefficients
	}
	return &Analyzer{
		Extractor:    ex,
		Coefficients: table,
		Clock:        time.Now,
		NewID:        uuid.NewString,
	}
}

func (a *Analyzer) Analyze(idea string) FeasibilityReport {
	inputs := a.Extractor.DeriveInputs(idea)
	return FeasibilityReport{
		ID:            a.NewID(),
		Idea:          idea,
		CreatedAt:     a.Clock().UTC(),
		Tags:          a.Extractor.ExtractKeywords(idea),
		DerivedInputs: inputs,
		ResultsByMode: ScoreAllModes(inputs, a.Coefficients),
	}
}

func BuildMarkdown(r FeasibilityReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Feasibility Report\n\n")
	fmt.Fprintf(&b, "- Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "- Created: %s\n", r.CreatedAt.Format(time.RFC3339))
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n\n", Disclaimer)

	fmt.Fprintf(&b, "## Idea\n\n> %s\n\n", sanitize(r.Idea))

	fmt.Fprintf(&b, "## Derived Inputs\n\n")
	fmt.Fprintf(&b, "| Input | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| Risk | %d / 100 |\n", r.DerivedInputs.Risk)
	fmt.Fprintf(&b, "| Time value of money | %s%% |\n", humanize.Ftoa(r.DerivedInputs.TimeValue))
	fmt.Fprintf(&b, "| Interest rate | %s%% |\n", humanize.Ftoa(r.DerivedInputs.InterestRate))
	fmt.Fprintf(&b, "| Months to ROI | %s |\n", humanize.Ftoa(r.DerivedInputs.ROITime))
	fmt.Fprintf(&b, "| Acceptable horizon (months) | %s |\n\n", humanize.Ftoa(r.DerivedInputs.LengthTimeFactor))

	fmt.Fprintf(&b, "## Scores by Mode\n\n")
	fmt.Fprintf(&b, "| Mode | Score | Verdict | PV factor | Risk penalty | Timeline penalty | Rate penalty | Cutoffs |\n")
	fmt.Fprintf(&b, "|------|-------|---------|-----------|--------------|------------------|--------------|---------|\n")
	for _, m := range AllModes() {
		res, ok := r.ResultsByMode[m]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %.3f | %.1f | %.1f | %.1f | %s / %s |\n",
			m.Label(), res.Score, res.Verdict, res.PVFactor,
			res.Details.RiskPenalty, res.Details.TimelinePenalty, res.Details.RatePenalty,
			humanize.Ftoa(res.Details.FeasibleCutoff), humanize.Ftoa(res.Details.BorderlineCutoff))
	}
	fmt.Fprintf(&b, "\n")

	for _, m := range AllModes() {
		res, ok := r.ResultsByMode[m]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", m.Label())
		if res.HasNarrative() {
			fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(*res.Narrative))
		} else {
			fmt.Fprintf(&b, "_Narrative pending._\n\n")
		}
	}
	return b.String()
}

// RenderHTML converts report markdown to an HTML fragment.
func RenderHTML(markdown string) (string, error) {
	var out bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return out.String(), nil
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
