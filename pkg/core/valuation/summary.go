package valuation

// ScenarioName labels one row of the scenario table.
type ScenarioName string

const (
	ScenarioConservative ScenarioName = "conservative"
	ScenarioBase         ScenarioName = "base"
	ScenarioAggressive   ScenarioName = "aggressive"
)

// ScenarioOrder is the fixed output order of the table.
var ScenarioOrder = [3]ScenarioName{ScenarioConservative, ScenarioBase, ScenarioAggressive}

// Valid reports whether n is one of the three known labels.
func (n ScenarioName) Valid() bool {
	for _, s := range ScenarioOrder {
		if n == s {
			return true
		}
	}
	return false
}

// ScenarioSet is the full input of one table: shared profile, three assumptions
// and the horizon used to discount every terminal value.
type ScenarioSet struct {
	Profile      FinancialProfile   `json:"profile"`
	Bear         ScenarioAssumption `json:"bear"`
	Base         ScenarioAssumption `json:"base"`
	Bull         ScenarioAssumption `json:"bull"`
	HorizonYears int                `json:"horizon_years"`
}

// Compute runs ComputeScenarios over the set.
func (s ScenarioSet) Compute() [3]ScenarioResult {
	return ComputeScenarios(s.Profile, s.Bear, s.Base, s.Bull, s.HorizonYears)
}

// ComputeScenarios values the bear, base and bull assumptions against one profile.
//
// Rows are always returned conservative, base, aggressive. The label comes from
// the argument position; whatever Name the caller put on an assumption is overwritten.
// Rows are independent: an undefined row never affects the other two.
func ComputeScenarios(profile FinancialProfile, bear, base, bull ScenarioAssumption, horizonYears int) [3]ScenarioResult {
	inputs := [3]ScenarioAssumption{bear, base, bull}

	var results [3]ScenarioResult
	for i, a := range inputs {
		a.Name = ScenarioOrder[i]
		results[i] = CalculateScenario(profile, a, horizonYears)
	}
	return results
}

// DefaultScenarioSet returns the calculator's starting values.
func DefaultScenarioSet() ScenarioSet {
	return ScenarioSet{
		Profile: FinancialProfile{
			Revenue:           10000,
			OperatingMargin:   0.25,
			TaxRate:           0.21,
			ReinvestmentRate:  0.30,
			SharesOutstanding: 1000,
		},
		Bear:         ScenarioAssumption{Name: ScenarioConservative, DiscountRate: 0.12, GrowthRate: 0.01},
		Base:         ScenarioAssumption{Name: ScenarioBase, DiscountRate: 0.10, GrowthRate: 0.02},
		Bull:         ScenarioAssumption{Name: ScenarioAggressive, DiscountRate: 0.09, GrowthRate: 0.03},
		HorizonYears: 5,
	}
}
