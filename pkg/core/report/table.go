// Package report renders scenario tables and copilot replies into the
// download formats offered by the API and the CLI.
package report

import (
	"math"
	"strings"

	"value_copilot/pkg/core/valuation"

	"github.com/shopspring/decimal"
)

// Columns of the scenario table, in output order.
var Columns = []string{"scenario", "discount_rate", "growth_rate", "fcf_year1", "enterprise_value", "price_per_share"}

// Undefined is the marker written for a value the model could not compute.
const Undefined = "NaN"

// Table is a computed scenario table together with the inputs that produced it.
type Table struct {
	Profile      valuation.FinancialProfile  `json:"profile"`
	HorizonYears int                         `json:"horizon_years"`
	Rows         [3]valuation.ScenarioResult `json:"rows"`
}

// NewTable computes the scenario set.
func NewTable(set valuation.ScenarioSet) Table {
	return Table{
		Profile:      set.Profile,
		HorizonYears: set.HorizonYears,
		Rows:         set.Compute(),
	}
}

// Record returns the row as text cells in Columns order, numbers in plain decimal form.
func Record(r valuation.ScenarioResult) []string {
	return []string{
		string(r.Scenario),
		FormatDecimal(r.DiscountRate, -1),
		FormatDecimal(r.GrowthRate, -1),
		FormatDecimal(r.FreeCashFlowYear1, -1),
		FormatDecimal(r.EnterpriseValue, -1),
		FormatDecimal(r.PricePerShare, -1),
	}
}

// FormatDecimal writes v without exponent notation. places < 0 keeps the
// shortest exact representation; otherwise v is rounded to places digits.
// NaN becomes Undefined and infinities become "+Inf" / "-Inf".
func FormatDecimal(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return Undefined
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	d := decimal.NewFromFloat(v)
	if places < 0 {
		return d.String()
	}
	return d.StringFixed(places)
}

// FormatPercent renders a rate such as 0.1 as "10.00%".
func FormatPercent(v float64) string {
	s := FormatDecimal(v*100, 2)
	if s == Undefined || strings.HasSuffix(s, "Inf") {
		return s
	}
	return s + "%"
}

// FormatMoney renders v rounded to cents with thousands separators.
func FormatMoney(v float64) string {
	s := FormatDecimal(v, 2)
	if s == Undefined || strings.HasSuffix(s, "Inf") {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}
