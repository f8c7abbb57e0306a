package valuation

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func exampleProfile() FinancialProfile {
	return FinancialProfile{
		Revenue:           10000,
		OperatingMargin:   0.25,
		TaxRate:           0.21,
		ReinvestmentRate:  0.30,
		SharesOutstanding: 1000,
	}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestWorkedExample(t *testing.T) {
	profile := exampleProfile()
	bear := ScenarioAssumption{DiscountRate: 0.12, GrowthRate: 0.01}
	base := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}
	bull := ScenarioAssumption{DiscountRate: 0.01, GrowthRate: 0.02}

	rows := ComputeScenarios(profile, bear, base, bull, 5)

	// EBIT = 2500, NOPAT = 1975, FCF = 1382.5 on every row
	for _, row := range rows {
		if !approx(row.FreeCashFlowYear1, 1382.5, 1e-9) {
			t.Errorf("%s: expected FCF 1382.5, got %f", row.Scenario, row.FreeCashFlowYear1)
		}
	}

	b := rows[1]
	if !approx(b.TerminalValue, 17626.875, 1e-9) {
		t.Errorf("Expected TV 17626.875, got %f", b.TerminalValue)
	}
	// PV(FCF) = 1382.5 / 1.10 = 1256.818..., PV(TV) = 17626.875 / 1.10^5 = 10944.90...
	expectedEV := 1382.5/1.10 + 17626.875/math.Pow(1.10, 5)
	if !approx(b.EnterpriseValue, expectedEV, 1e-9) {
		t.Errorf("Expected EV %f, got %f", expectedEV, b.EnterpriseValue)
	}
	if !approx(b.EnterpriseValue, 12201.72, 0.01) {
		t.Errorf("Expected EV ~12201.72, got %f", b.EnterpriseValue)
	}
	if !approx(b.PricePerShare, expectedEV/1000, 1e-12) {
		t.Errorf("Expected price %f, got %f", expectedEV/1000, b.PricePerShare)
	}

	// WACC 0.01 <= g 0.02: undefined row, FCF still defined
	d := rows[2]
	if !math.IsNaN(d.TerminalValue) || !math.IsNaN(d.EnterpriseValue) || !math.IsNaN(d.PricePerShare) {
		t.Errorf("Expected NaN TV/EV/price for r <= g, got %f / %f / %f", d.TerminalValue, d.EnterpriseValue, d.PricePerShare)
	}
	if d.Defined() {
		t.Error("Expected undefined row to report Defined() == false")
	}
}

func TestDeterminism(t *testing.T) {
	set := DefaultScenarioSet()
	set.Bull.DiscountRate = 0.02
	set.Bull.GrowthRate = 0.05

	first := set.Compute()
	for i := 0; i < 20; i++ {
		again := set.Compute()
		for j := range first {
			if math.Float64bits(first[j].EnterpriseValue) != math.Float64bits(again[j].EnterpriseValue) ||
				math.Float64bits(first[j].PricePerShare) != math.Float64bits(again[j].PricePerShare) ||
				math.Float64bits(first[j].TerminalValue) != math.Float64bits(again[j].TerminalValue) {
				t.Fatalf("run %d row %d differs: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestRowOrderIgnoresMagnitudeAndNames(t *testing.T) {
	profile := exampleProfile()
	// aggressive WACC above the conservative one, names deliberately scrambled
	bear := ScenarioAssumption{Name: ScenarioAggressive, DiscountRate: 0.08, GrowthRate: 0.03}
	base := ScenarioAssumption{Name: ScenarioConservative, DiscountRate: 0.10, GrowthRate: 0.02}
	bull := ScenarioAssumption{Name: ScenarioBase, DiscountRate: 0.15, GrowthRate: 0.00}

	rows := ComputeScenarios(profile, bear, base, bull, 7)

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, want := range ScenarioOrder {
		if rows[i].Scenario != want {
			t.Errorf("row %d: expected %s, got %s", i, want, rows[i].Scenario)
		}
	}
	if rows[0].DiscountRate != 0.08 || rows[2].DiscountRate != 0.15 {
		t.Errorf("Expected inputs echoed in position order, got %f / %f", rows[0].DiscountRate, rows[2].DiscountRate)
	}
}

func TestGordonValidity(t *testing.T) {
	tests := []struct {
		name    string
		r, g    float64
		defined bool
	}{
		{"r above g", 0.10, 0.02, true},
		{"negative growth", 0.08, -0.05, true},
		{"r equals g", 0.03, 0.03, false},
		{"r below g", 0.01, 0.02, false},
		{"zero rates", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fine := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}
			probe := ScenarioAssumption{DiscountRate: tt.r, GrowthRate: tt.g}
			rows := ComputeScenarios(exampleProfile(), fine, probe, fine, 5)

			if tt.defined {
				if math.IsNaN(rows[1].EnterpriseValue) || math.IsInf(rows[1].EnterpriseValue, 0) {
					t.Errorf("Expected finite EV, got %f", rows[1].EnterpriseValue)
				}
			} else {
				if !math.IsNaN(rows[1].TerminalValue) || !math.IsNaN(rows[1].EnterpriseValue) || !math.IsNaN(rows[1].PricePerShare) {
					t.Errorf("Expected NaN row, got %+v", rows[1])
				}
			}
			// Neighbours stay finite either way
			for _, i := range []int{0, 2} {
				if math.IsNaN(rows[i].EnterpriseValue) {
					t.Errorf("row %d contaminated by undefined neighbour", i)
				}
			}
		})
	}
}

func TestSharesFloor(t *testing.T) {
	for _, shares := range []float64{0, -50} {
		profile := exampleProfile()
		profile.SharesOutstanding = shares
		a := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}

		row := ComputeScenarios(profile, a, a, a, 5)[1]

		if math.IsInf(row.PricePerShare, 0) || math.IsNaN(row.PricePerShare) {
			t.Fatalf("shares=%f: expected finite price, got %f", shares, row.PricePerShare)
		}
		if row.PricePerShare != row.EnterpriseValue/SharesEpsilon {
			t.Errorf("shares=%f: expected EV/epsilon %f, got %f", shares, row.EnterpriseValue/SharesEpsilon, row.PricePerShare)
		}
	}

	// Legitimate counts pass through max() untouched
	profile := exampleProfile()
	if profile.EffectiveShares() != 1000 {
		t.Errorf("Expected 1000 effective shares, got %f", profile.EffectiveShares())
	}
}

func TestIndependence(t *testing.T) {
	profile := exampleProfile()
	base := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}
	bull := ScenarioAssumption{DiscountRate: 0.09, GrowthRate: 0.03}

	reference := ComputeScenarios(profile, ScenarioAssumption{DiscountRate: 0.12, GrowthRate: 0.01}, base, bull, 5)

	bears := []ScenarioAssumption{
		{DiscountRate: 0.50, GrowthRate: -0.10},
		{DiscountRate: 0.01, GrowthRate: 0.20},
		{DiscountRate: math.NaN(), GrowthRate: 0.02},
	}
	for _, bear := range bears {
		rows := ComputeScenarios(profile, bear, base, bull, 5)
		for i := 1; i < 3; i++ {
			if rows[i].EnterpriseValue != reference[i].EnterpriseValue || rows[i].PricePerShare != reference[i].PricePerShare {
				t.Errorf("bear %+v changed row %d: %+v vs %+v", bear, i, rows[i], reference[i])
			}
		}
	}
}

func TestHorizonDiscounting(t *testing.T) {
	a := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}
	short := ComputeScenarios(exampleProfile(), a, a, a, 3)[1]
	long := ComputeScenarios(exampleProfile(), a, a, a, 10)[1]

	if !(long.EnterpriseValue < short.EnterpriseValue) {
		t.Errorf("Expected longer horizon to discount TV harder: %f vs %f", long.EnterpriseValue, short.EnterpriseValue)
	}
	// Horizon never touches the year-1 flow discount
	pvFlow := 1382.5 / 1.10
	if !approx(short.EnterpriseValue-short.TerminalValue/math.Pow(1.1, 3), pvFlow, 1e-9) {
		t.Errorf("Unexpected PV(FCF) component")
	}
}

func TestSanitizeClamps(t *testing.T) {
	set := ScenarioSet{
		Profile: FinancialProfile{
			Revenue:           -5,
			OperatingMargin:   1.7,
			TaxRate:           -0.2,
			ReinvestmentRate:  math.NaN(),
			SharesOutstanding: -1,
		},
		Bull:         ScenarioAssumption{DiscountRate: 0.09, GrowthRate: -0.05},
		HorizonYears: 5,
	}

	got := set.Sanitize()

	if got.Profile.Revenue != 0 || got.Profile.OperatingMargin != 1 || got.Profile.TaxRate != 0 ||
		got.Profile.ReinvestmentRate != 0 || got.Profile.SharesOutstanding != 0 {
		t.Errorf("Unexpected sanitized profile: %+v", got.Profile)
	}
	if got.Bull.GrowthRate != -0.05 {
		t.Errorf("Expected growth rate untouched, got %f", got.Bull.GrowthRate)
	}
	if !got.HorizonValid() {
		t.Error("Expected horizon 5 to be valid")
	}
	got.HorizonYears = 0
	if got.HorizonValid() {
		t.Error("Expected horizon 0 to be invalid")
	}
}

func TestResultJSONUsesNullForUndefined(t *testing.T) {
	a := ScenarioAssumption{DiscountRate: 0.01, GrowthRate: 0.02}
	row := ComputeScenarios(exampleProfile(), a, a, a, 5)[0]

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"enterprise_value":null`) || !strings.Contains(s, `"defined":false`) {
		t.Errorf("Expected null EV and defined=false, got %s", s)
	}
	if !strings.Contains(s, `"fcf_year1":1382.5`) {
		t.Errorf("Expected FCF to be serialized, got %s", s)
	}
}

func TestOverflowIsNotDefined(t *testing.T) {
	profile := FinancialProfile{Revenue: math.MaxFloat64, OperatingMargin: 1, SharesOutstanding: 1}
	a := ScenarioAssumption{DiscountRate: 0.10, GrowthRate: 0.02}
	row := CalculateScenario(profile, a, 5)

	if !math.IsInf(row.EnterpriseValue, 1) {
		t.Fatalf("Expected +Inf EV, got %v", row.EnterpriseValue)
	}
	if row.Defined() {
		t.Error("Expected an infinite EV to be undefined")
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"enterprise_value":null`) || !strings.Contains(string(data), `"defined":false`) {
		t.Errorf("Expected null EV and defined=false, got %s", data)
	}
}

func TestValidateRates(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScenarioSet)
		wantErr bool
	}{
		{"defaults", func(*ScenarioSet) {}, false},
		{"edges", func(s *ScenarioSet) {
			s.Bear = ScenarioAssumption{DiscountRate: MaxDiscountRate, GrowthRate: MinGrowthRate}
			s.Bull = ScenarioAssumption{DiscountRate: MinDiscountRate, GrowthRate: MaxGrowthRate}
		}, false},
		{"r equals minus one", func(s *ScenarioSet) { s.Bear.DiscountRate = -1 }, true},
		{"r above max", func(s *ScenarioSet) { s.Base.DiscountRate = 0.51 }, true},
		{"g below min", func(s *ScenarioSet) { s.Bull.GrowthRate = -0.2 }, true},
		{"g NaN", func(s *ScenarioSet) { s.Base.GrowthRate = math.NaN() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultScenarioSet()
			tt.mutate(&set)
			err := set.ValidateRates()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
