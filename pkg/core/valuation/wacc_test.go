package valuation

import "testing"

func TestCalculateCapitalCost(t *testing.T) {
	got := CalculateCapitalCost(DefaultCapitalCostInput())

	checks := []struct {
		name      string
		got, want float64
	}{
		{"levered beta", got.LeveredBeta, 1.1975},
		{"cost of equity", got.CostOfEquity, 0.099875},
		{"after-tax debt", got.AfterTaxDebt, 0.0474},
		{"weight equity", got.WeightEquity, 0.8},
		{"weight debt", got.WeightDebt, 0.2},
		{"wacc", got.WACC, 0.08938},
	}
	for _, c := range checks {
		if !approx(c.got, c.want, 1e-9) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestCapitalCostWithoutDebt(t *testing.T) {
	in := DefaultCapitalCostInput()
	in.DebtToEquity = -1

	got := CalculateCapitalCost(in)
	if got.WeightDebt != 0 || got.WeightEquity != 1 {
		t.Fatalf("weights = %v/%v, want 0/1", got.WeightDebt, got.WeightEquity)
	}
	if got.WACC != got.CostOfEquity {
		t.Errorf("unlevered WACC %v should equal cost of equity %v", got.WACC, got.CostOfEquity)
	}
}

func TestScenarioDiscountRates(t *testing.T) {
	bear, base, bull := ScenarioDiscountRates(0.10, -0.02)
	if !approx(bear, 0.12, 1e-12) || base != 0.10 || !approx(bull, 0.08, 1e-12) {
		t.Errorf("rates = %v/%v/%v, want 0.12/0.10/0.08", bear, base, bull)
	}
}
