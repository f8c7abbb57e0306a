package valuation

import (
	"encoding/json"
	"math"
)

// SharesEpsilon is the floor applied to the share count before it is used as a divisor.
const SharesEpsilon = 1e-6

// FinancialProfile is the company snapshot shared by every scenario in one calculation.
// Rate fields are expected in [0, 1]; callers clamp them before they get here.
type FinancialProfile struct {
	Revenue           float64 `json:"revenue"`
	OperatingMargin   float64 `json:"operating_margin"`
	TaxRate           float64 `json:"tax_rate"`
	ReinvestmentRate  float64 `json:"reinvestment_rate"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// ScenarioAssumption holds the per-scenario discount (WACC) and perpetual growth rates.
type ScenarioAssumption struct {
	Name         ScenarioName `json:"name"`
	DiscountRate float64      `json:"discount_rate"`
	GrowthRate   float64      `json:"growth_rate"`
}

// ScenarioResult is one row of the scenario table.
// TerminalValue, EnterpriseValue and PricePerShare are NaN when the Gordon
// growth formula is undefined (DiscountRate <= GrowthRate).
type ScenarioResult struct {
	Scenario          ScenarioName `json:"scenario"`
	DiscountRate      float64      `json:"discount_rate"`
	GrowthRate        float64      `json:"growth_rate"`
	FreeCashFlowYear1 float64      `json:"fcf_year1"`
	TerminalValue     float64      `json:"terminal_value"`
	EnterpriseValue   float64      `json:"enterprise_value"`
	PricePerShare     float64      `json:"price_per_share"`
}

// Defined reports whether the row carries a usable valuation: a finite
// enterprise value. Overflow to ±Inf counts as undefined.
func (r ScenarioResult) Defined() bool {
	return !math.IsNaN(r.EnterpriseValue) && !math.IsInf(r.EnterpriseValue, 0)
}

// FreeCashFlowYear1 is the single representative flow used for both the
// discounted near-term flow and the terminal value.
//
// FORMULA: FCF = Revenue × Margin × (1 - Tax) × (1 - Reinvestment)
func (p FinancialProfile) FreeCashFlowYear1() float64 {
	ebit := p.Revenue * p.OperatingMargin
	nopat := ebit * (1 - p.TaxRate)
	return nopat * (1 - p.ReinvestmentRate)
}

// EffectiveShares floors the share count at SharesEpsilon.
func (p FinancialProfile) EffectiveShares() float64 {
	return math.Max(p.SharesOutstanding, SharesEpsilon)
}

// TerminalValueGordonGrowth capitalises next year's flow at (r - g).
//
// FORMULA: TV = FCF × (1 + g) / (r - g)
//
// Returns NaN when r <= g, where the perpetuity does not converge.
func TerminalValueGordonGrowth(fcf, discountRate, growthRate float64) float64 {
	if discountRate <= growthRate {
		return math.NaN()
	}
	return fcf * (1 + growthRate) / (discountRate - growthRate)
}

// PresentValue discounts a single amount back `periods` years.
//
// FORMULA: PV = CF / (1 + r)^t
//
// NaN in, NaN out.
func PresentValue(amount, discountRate float64, periods int) float64 {
	return amount / math.Pow(1+discountRate, float64(periods))
}

// CalculateScenario values one scenario against the shared profile and horizon.
func CalculateScenario(profile FinancialProfile, assumption ScenarioAssumption, horizonYears int) ScenarioResult {
	r := assumption.DiscountRate
	g := assumption.GrowthRate

	// 1. Representative free cash flow
	fcf := profile.FreeCashFlowYear1()

	// 2. Terminal value (NaN when r <= g)
	tv := TerminalValueGordonGrowth(fcf, r, g)

	// 3. Discounting: year-1 flow one period, terminal value over the horizon
	pvFlow := PresentValue(fcf, r, 1)
	pvTerminal := math.NaN()
	if !math.IsNaN(tv) {
		pvTerminal = PresentValue(tv, r, horizonYears)
	}

	// 4. Aggregation; NaN propagates through the sum and the division
	ev := pvFlow + pvTerminal
	price := ev / profile.EffectiveShares()

	return ScenarioResult{
		Scenario:          assumption.Name,
		DiscountRate:      r,
		GrowthRate:        g,
		FreeCashFlowYear1: fcf,
		TerminalValue:     tv,
		EnterpriseValue:   ev,
		PricePerShare:     price,
	}
}

// MarshalJSON writes undefined (NaN) fields as null; encoding/json rejects NaN.
func (r ScenarioResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Scenario          ScenarioName `json:"scenario"`
		DiscountRate      *float64     `json:"discount_rate"`
		GrowthRate        *float64     `json:"growth_rate"`
		FreeCashFlowYear1 *float64     `json:"fcf_year1"`
		TerminalValue     *float64     `json:"terminal_value"`
		EnterpriseValue   *float64     `json:"enterprise_value"`
		PricePerShare     *float64     `json:"price_per_share"`
		Defined           bool         `json:"defined"`
	}{
		Scenario:          r.Scenario,
		DiscountRate:      finiteOrNil(r.DiscountRate),
		GrowthRate:        finiteOrNil(r.GrowthRate),
		FreeCashFlowYear1: finiteOrNil(r.FreeCashFlowYear1),
		TerminalValue:     finiteOrNil(r.TerminalValue),
		EnterpriseValue:   finiteOrNil(r.EnterpriseValue),
		PricePerShare:     finiteOrNil(r.PricePerShare),
		Defined:           r.Defined(),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
