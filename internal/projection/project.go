package projection

import (
	"fmt"
	"math"
)

// outlookMonths is the fixed horizon of the closed-form weighted outlook.
const outlookMonths = 12

// ProjectScenario simulates monthly revenue from a customer base seeded at
// baseRevenue/AvgPrice. Each month nets acquisition against churn on the
// current customer count. It returns months+1 points, month 0 first.
func ProjectScenario(p ScenarioParams, baseRevenue float64, months int) (Series, error) {
	if !(p.AvgPrice > 0) || math.IsInf(p.AvgPrice, 0) {
		return Series{}, fmt.Errorf("scenario %q: %w", p.Name, ErrNonPositivePrice)
	}
	if months < 0 {
		months = 0
	}

	customers := baseRevenue / p.AvgPrice
	revenue := baseRevenue
	points := make([]Point, 0, months+1)
	for month := 0; month <= months; month++ {
		points = append(points, Point{Month: month, Revenue: math.Round(revenue)})
		acquisition := customers * p.CustomerAcquisition / 100
		churn := customers * p.ChurnRate / 100
		customers += acquisition - churn
		revenue = customers * p.AvgPrice
	}
	return Series{ScenarioID: p.ID, Name: p.Name, Points: points}, nil
}

// ProjectAll runs ProjectScenario for every scenario against the same base.
func ProjectAll(scenarios []ScenarioParams, baseRevenue float64, months int) ([]Series, error) {
	out := make([]Series, 0, len(scenarios))
	for _, sc := range scenarios {
		s, err := ProjectScenario(sc, baseRevenue, months)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DuplicateName returns the first scenario name used more than once. Merged
// rows are keyed by name, so duplicates would overwrite each other.
func DuplicateName(scenarios []ScenarioParams) (string, bool) {
	seen := make(map[string]struct{}, len(scenarios))
	for _, sc := range scenarios {
		if _, ok := seen[sc.Name]; ok {
			return sc.Name, true
		}
		seen[sc.Name] = struct{}{}
	}
	return "", false
}

// MergeProjections pivots every scenario's series into one row per month.
func MergeProjections(scenarios []ScenarioParams, baseRevenue float64, months int) ([]Row, error) {
	series, err := ProjectAll(scenarios, baseRevenue, months)
	if err != nil {
		return nil, err
	}
	return mergeSeries(series), nil
}

func mergeSeries(series []Series) []Row {
	if len(series) == 0 {
		return []Row{}
	}
	rows := make([]Row, len(series[0].Points))
	for i := range rows {
		rows[i] = Row{Month: i, Values: make(map[string]float64, len(series))}
	}
	for _, s := range series {
		for _, pt := range s.Points {
			if pt.Month < len(rows) {
				rows[pt.Month].Values[s.Name] = pt.Revenue
			}
		}
	}
	return rows
}

// WeightedOutlook applies the closed-form compounding estimate
// base*(1+(acquisition-churn)/100)^12 to each scenario, weights it by
// probability/100 and sums. ConfidenceLevel is the raw probability sum and is
// not normalized.
func WeightedOutlook(scenarios []ScenarioParams, baseRevenue float64) Outlook {
	out := Outlook{Scenarios: make([]ScenarioOutlook, 0, len(scenarios))}
	for _, sc := range scenarios {
		final := baseRevenue * math.Pow(1+(sc.CustomerAcquisition-sc.ChurnRate)/100, outlookMonths)
		weighted := final * sc.Probability / 100
		line := ScenarioOutlook{
			ScenarioID:      sc.ID,
			Name:            sc.Name,
			Probability:     sc.Probability,
			FinalRevenue:    final,
			WeightedRevenue: weighted,
		}
		if s, err := ProjectScenario(sc, baseRevenue, outlookMonths); err == nil {
			line.SimulatedRevenue = s.Points[len(s.Points)-1].Revenue
		}
		out.ExpectedRevenue += weighted
		out.ConfidenceLevel += sc.Probability
		out.Scenarios = append(out.Scenarios, line)
	}
	return out
}

// Analyze bundles the per-scenario series, merged table and weighted outlook.
func Analyze(scenarios []ScenarioParams, baseRevenue float64, months int) (Analysis, error) {
	if months < 0 {
		months = 0
	}
	series, err := ProjectAll(scenarios, baseRevenue, months)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		BaseRevenue: baseRevenue,
		Months:      months,
		Series:      series,
		Table:       mergeSeries(series),
		Outlook:     WeightedOutlook(scenarios, baseRevenue),
	}, nil
}
