package valuation

import "math"

// CapitalCostInput holds the market and leverage assumptions behind a discount rate.
type CapitalCostInput struct {
	RiskFreeRate      float64 `json:"risk_free_rate"`
	UnleveredBeta     float64 `json:"unlevered_beta"`
	EquityRiskPremium float64 `json:"equity_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate"`
	DebtToEquity      float64 `json:"debt_to_equity"` // target D/E
}

// CapitalCost is the WACC together with its components.
type CapitalCost struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	AfterTaxDebt float64 `json:"after_tax_cost_of_debt"`
	WeightEquity float64 `json:"weight_equity"`
	WeightDebt   float64 `json:"weight_debt"`
	WACC         float64 `json:"wacc"`
}

// DefaultCapitalCostInput is a plain large-cap starting point.
func DefaultCapitalCostInput() CapitalCostInput {
	return CapitalCostInput{
		RiskFreeRate:      0.04,
		UnleveredBeta:     1.0,
		EquityRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.21,
		DebtToEquity:      0.25,
	}
}

// CalculateCapitalCost re-levers beta (Hamada), prices equity with CAPM and
// blends it with after-tax debt at the target leverage. A negative D/E is
// treated as zero.
func CalculateCapitalCost(in CapitalCostInput) CapitalCost {
	de := math.Max(in.DebtToEquity, 0)

	beta := in.UnleveredBeta * (1 + (1-in.TaxRate)*de)
	ke := in.RiskFreeRate + beta*in.EquityRiskPremium
	kd := in.PreTaxCostOfDebt * (1 - in.TaxRate)

	// D = de*E, so V = E*(1+de)
	wd := de / (1 + de)
	we := 1 / (1 + de)

	return CapitalCost{
		LeveredBeta:  beta,
		CostOfEquity: ke,
		AfterTaxDebt: kd,
		WeightEquity: we,
		WeightDebt:   wd,
		WACC:         ke*we + kd*wd,
	}
}

// ScenarioDiscountRates spreads a central discount rate into the
// conservative, base and aggressive rates: base+spread, base, base-spread.
// Growth rates are left to the caller.
func ScenarioDiscountRates(base, spread float64) (bear, mid, bull float64) {
	spread = math.Abs(spread)
	return base + spread, base, base - spread
}
