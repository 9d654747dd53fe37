package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/joelkehle/ideascope/internal/projection"
)

func main() {
	file := flag.String("file", "", "YAML file with base_revenue, months and scenarios (defaults to presets)")
	baseRevenue := flag.Float64("base-revenue", 0, "Override base monthly revenue")
	months := flag.Int("months", -1, "Override projection horizon in months")
	flag.Parse()

	ws := projection.NewWorkspace()
	if *file != "" {
		loaded, err := loadWorkspace(*file)
		if err != nil {
			log.Fatalf("load scenarios: %v", err)
		}
		ws = loaded
	}
	if *baseRevenue > 0 {
		ws = ws.WithBaseRevenue(*baseRevenue)
	}
	if *months >= 0 {
		ws = ws.WithMonths(*months)
	}

	analysis, err := ws.Evaluate()
	if err != nil {
		log.Fatalf("project scenarios: %v", err)
	}
	fmt.Print(renderTable(analysis))
}

func loadWorkspace(path string) (projection.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return projection.Workspace{}, err
	}
	raw := projection.Workspace{BaseRevenue: projection.DefaultBaseRevenue, Months: projection.DefaultMonths}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return projection.Workspace{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if name, dup := projection.DuplicateName(raw.Scenarios); dup {
		return projection.Workspace{}, fmt.Errorf("parse %s: scenario name %q is used more than once", path, name)
	}
	ws := projection.Workspace{}.WithBaseRevenue(raw.BaseRevenue).WithMonths(raw.Months)
	for _, sc := range raw.Scenarios {
		ws = ws.Append(sc)
	}
	return ws, nil
}

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 0)
}

func renderTable(a projection.Analysis) string {
	var b strings.Builder
	names := make([]string, 0, len(a.Series))
	for _, s := range a.Series {
		names = append(names, s.Name)
	}

	fmt.Fprintf(&b, "Base revenue %s over %d months\n\n", money(a.BaseRevenue), a.Months)
	fmt.Fprintf(&b, "%-6s", "Month")
	for _, n := range names {
		fmt.Fprintf(&b, " %16s", n)
	}
	b.WriteString("\n")
	for _, row := range a.Table {
		fmt.Fprintf(&b, "%-6d", row.Month)
		for _, n := range names {
			fmt.Fprintf(&b, " %16s", money(row.Values[n]))
		}
		b.WriteString("\n")
	}

	lines := append([]projection.ScenarioOutlook(nil), a.Outlook.Scenarios...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].WeightedRevenue > lines[j].WeightedRevenue })
	fmt.Fprintf(&b, "\n12-month outlook\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-16s p=%5.1f%%  final %s  weighted %s  simulated %s\n",
			l.Name, l.Probability, money(l.FinalRevenue), money(l.WeightedRevenue), money(l.SimulatedRevenue))
	}
	fmt.Fprintf(&b, "Expected revenue %s (probability total %.1f%%)\n",
		money(a.Outlook.ExpectedRevenue), a.Outlook.ConfidenceLevel)
	return b.String()
}
