package report

import (
	"fmt"
	"strings"

	"value_copilot/pkg/core/valuation"
)

// Markdown renders the rows as a GitHub-flavoured table.
func Markdown(rows [3]valuation.ScenarioResult) string {
	var b strings.Builder
	b.WriteString("| Scenario | Discount rate | Growth rate | FCF (yr 1) | EV (PV) | Price/Share |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Scenario,
			FormatPercent(r.DiscountRate),
			FormatPercent(r.GrowthRate),
			FormatMoney(r.FreeCashFlowYear1),
			FormatMoney(r.EnterpriseValue),
			FormatMoney(r.PricePerShare))
	}
	return b.String()
}

// MarkdownReport is the table preceded by a title and the shared inputs.
func MarkdownReport(t Table) string {
	var b strings.Builder
	b.WriteString("# DCF scenario snapshot\n\n")
	fmt.Fprintf(&b, "- Revenue: %s\n", FormatMoney(t.Profile.Revenue))
	fmt.Fprintf(&b, "- Operating margin: %s\n", FormatPercent(t.Profile.OperatingMargin))
	fmt.Fprintf(&b, "- Tax rate: %s\n", FormatPercent(t.Profile.TaxRate))
	fmt.Fprintf(&b, "- Reinvestment rate: %s\n", FormatPercent(t.Profile.ReinvestmentRate))
	fmt.Fprintf(&b, "- Shares outstanding: %s\n", FormatDecimal(t.Profile.SharesOutstanding, -1))
	fmt.Fprintf(&b, "- Horizon: %d years\n\n", t.HorizonYears)
	b.WriteString(Markdown(t.Rows))
	b.WriteString("\nRows where the discount rate does not exceed the growth rate have no terminal value and show NaN.\n")
	return b.String()
}
