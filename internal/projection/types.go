package projection

import (
	"encoding/json"
	"errors"
)

// DefaultMonths is the projection horizon used when none is given.
const DefaultMonths = 12

// ErrNonPositivePrice marks a scenario whose average price cannot seed a
// customer count.
var ErrNonPositivePrice = errors.New("avg_price must be greater than zero")

type ScenarioParams struct {
	ID                  string  `json:"id" yaml:"id"`
	Name                string  `json:"name" yaml:"name" validate:"required"`
	CustomerAcquisition float64 `json:"customer_acquisition" yaml:"customer_acquisition" validate:"gte=0"`
	ChurnRate           float64 `json:"churn_rate" yaml:"churn_rate" validate:"gte=0,lte=100"`
	AvgPrice            float64 `json:"avg_price" yaml:"avg_price" validate:"gt=0"`
	// MarketGrowth is carried for display only; neither growth path applies it.
	MarketGrowth float64 `json:"market_growth" yaml:"market_growth"`
	Probability  float64 `json:"probability" yaml:"probability" validate:"gte=0,lte=100"`
}

type Point struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

type Series struct {
	ScenarioID string  `json:"scenario_id"`
	Name       string  `json:"name"`
	Points     []Point `json:"points"`
}

// Row is one month of a merged projection table. It marshals flat, with each
// scenario's revenue keyed by scenario name next to "month".
type Row struct {
	Month  int
	Values map[string]float64
}

func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat["month"] = r.Month
	return json.Marshal(flat)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.Month = int(flat["month"])
	delete(flat, "month")
	r.Values = flat
	return nil
}

type ScenarioOutlook struct {
	ScenarioID       string  `json:"scenario_id"`
	Name             string  `json:"name"`
	Probability      float64 `json:"probability"`
	FinalRevenue     float64 `json:"final_revenue"`
	WeightedRevenue  float64 `json:"weighted_revenue"`
	SimulatedRevenue float64 `json:"simulated_revenue"`
}

type Outlook struct {
	ExpectedRevenue float64           `json:"expected_revenue"`
	ConfidenceLevel float64           `json:"confidence_level"`
	Scenarios       []ScenarioOutlook `json:"scenarios"`
}

type Analysis struct {
	BaseRevenue float64  `json:"base_revenue"`
	Months      int      `json:"months"`
	Series      []Series `json:"series"`
	Table       []Row    `json:"table"`
	Outlook     Outlook  `json:"outlook"`
}
