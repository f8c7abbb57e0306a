package valuation

import (
	"fmt"
	"math"
)

// Bounds for the input-collection layer. The engine itself never applies them.
const (
	MinHorizonYears = 1
	MaxHorizonYears = 50

	MinDiscountRate = 0.01
	MaxDiscountRate = 0.5
	MinGrowthRate   = -0.1
	MaxGrowthRate   = 0.2
)

// ClampUnit bounds v to [0, 1]. NaN becomes 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

// NonNegative bounds v below at 0. NaN becomes 0.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Sanitize applies the form-layer clamping: rates into [0, 1], revenue and
// share count non-negative. Discount and growth rates are left for
// ValidateRates; growth may be negative and r <= g is a valid, undefined row.
func (s ScenarioSet) Sanitize() ScenarioSet {
	s.Profile.Revenue = NonNegative(s.Profile.Revenue)
	s.Profile.OperatingMargin = ClampUnit(s.Profile.OperatingMargin)
	s.Profile.TaxRate = ClampUnit(s.Profile.TaxRate)
	s.Profile.ReinvestmentRate = ClampUnit(s.Profile.ReinvestmentRate)
	s.Profile.SharesOutstanding = NonNegative(s.Profile.SharesOutstanding)
	return s
}

// HorizonValid reports whether the horizon is inside the accepted range.
func (s ScenarioSet) HorizonValid() bool {
	return s.HorizonYears >= MinHorizonYears && s.HorizonYears <= MaxHorizonYears
}

// ValidateRates checks every scenario's discount rate against
// [MinDiscountRate, MaxDiscountRate] and growth rate against
// [MinGrowthRate, MaxGrowthRate]. NaN is out of range.
func (s ScenarioSet) ValidateRates() error {
	for _, sc := range []struct {
		key string
		a   ScenarioAssumption
	}{{"bear", s.Bear}, {"base", s.Base}, {"bull", s.Bull}} {
		if !inRange(sc.a.DiscountRate, MinDiscountRate, MaxDiscountRate) {
			return fmt.Errorf("%s discount_rate must be between %g and %g", sc.key, MinDiscountRate, MaxDiscountRate)
		}
		if !inRange(sc.a.GrowthRate, MinGrowthRate, MaxGrowthRate) {
			return fmt.Errorf("%s growth_rate must be between %g and %g", sc.key, MinGrowthRate, MaxGrowthRate)
		}
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
