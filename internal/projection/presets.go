package projection

// DefaultBaseRevenue is the monthly revenue the dashboard starts from.
const DefaultBaseRevenue = 50000

// DefaultScenarios returns a fresh copy of the starting scenario set.
func DefaultScenarios() []ScenarioParams {
	return []ScenarioParams{
		{ID: "conservative", Name: "Conservative", CustomerAcquisition: 3, ChurnRate: 2.5, AvgPrice: 100, MarketGrowth: 5, Probability: 30},
		{ID: "base", Name: "Base Case", CustomerAcquisition: 5, ChurnRate: 2, AvgPrice: 100, MarketGrowth: 8, Probability: 50},
		{ID: "optimistic", Name: "Optimistic", CustomerAcquisition: 8, ChurnRate: 1.5, AvgPrice: 100, MarketGrowth: 12, Probability: 20},
	}
}
