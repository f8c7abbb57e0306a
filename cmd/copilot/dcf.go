package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"value_copilot/pkg/core/report"
	"value_copilot/pkg/core/valuation"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var dcfCmd = &cobra.Command{
	Use:   "dcf",
	Short: "Compute the conservative, base and aggressive DCF scenarios",
	Long: `Compute a three-scenario discounted cash flow snapshot.

Year-one free cash flow is revenue x margin x (1 - tax) x (1 - reinvestment).
The terminal value uses the Gordon growth formula and is undefined (NaN)
whenever the discount rate does not exceed the growth rate.`,
	RunE: runDCF,
}

var (
	dcfSet    = valuation.DefaultScenarioSet()
	dcfFormat string
	dcfOutput string
)

func init() {
	f := dcfCmd.Flags()
	p := &dcfSet.Profile
	f.Float64Var(&p.Revenue, "revenue", p.Revenue, "annual revenue")
	f.Float64Var(&p.OperatingMargin, "margin", p.OperatingMargin, "operating margin (0-1)")
	f.Float64Var(&p.TaxRate, "tax", p.TaxRate, "tax rate (0-1)")
	f.Float64Var(&p.ReinvestmentRate, "reinvest", p.ReinvestmentRate, "reinvestment rate (0-1)")
	f.Float64Var(&p.SharesOutstanding, "shares", p.SharesOutstanding, "shares outstanding")

	f.Float64Var(&dcfSet.Bear.DiscountRate, "bear-r", dcfSet.Bear.DiscountRate, "conservative discount rate")
	f.Float64Var(&dcfSet.Bear.GrowthRate, "bear-g", dcfSet.Bear.GrowthRate, "conservative terminal growth")
	f.Float64Var(&dcfSet.Base.DiscountRate, "base-r", dcfSet.Base.DiscountRate, "base discount rate")
	f.Float64Var(&dcfSet.Base.GrowthRate, "base-g", dcfSet.Base.GrowthRate, "base terminal growth")
	f.Float64Var(&dcfSet.Bull.DiscountRate, "bull-r", dcfSet.Bull.DiscountRate, "aggressive discount rate")
	f.Float64Var(&dcfSet.Bull.GrowthRate, "bull-g", dcfSet.Bull.GrowthRate, "aggressive terminal growth")
	f.IntVar(&dcfSet.HorizonYears, "horizon", dcfSet.HorizonYears, "terminal value discounting periods")

	f.StringVar(&dcfFormat, "format", "table", "output format: table, csv, md, json or pdf")
	f.StringVarP(&dcfOutput, "output", "o", "", "write to a file instead of stdout (required for pdf)")
}

func runDCF(cmd *cobra.Command, args []string) error {
	set := dcfSet.Sanitize()
	if !set.HorizonValid() {
		return fmt.Errorf("--horizon must be between %d and %d", valuation.MinHorizonYears, valuation.MaxHorizonYears)
	}
	if err := set.ValidateRates(); err != nil {
		return err
	}
	t := report.NewTable(set)

	out := cmd.OutOrStdout()
	if dcfOutput != "" {
		file, err := os.Create(dcfOutput)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	} else if dcfFormat == "pdf" {
		return fmt.Errorf("--format pdf needs --output")
	}

	if err := writeTable(out, t, dcfFormat); err != nil {
		return err
	}
	logger.Debug("dcf written")
	return nil
}

func writeTable(w io.Writer, t report.Table, format string) error {
	switch format {
	case "table":
		_, err := fmt.Fprintln(w, renderTerminal(t))
		return err
	case "csv":
		return report.WriteCSV(w, t.Rows, report.CSVOptions{})
	case "md":
		_, err := io.WriteString(w, report.MarkdownReport(t))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case "pdf":
		return report.WritePDF(w, t)
	default:
		return fmt.Errorf("unknown format %q (want table, csv, md, json or pdf)", format)
	}
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	undefinedStyle = cellStyle.Foreground(lipgloss.Color("9"))
)

func renderTerminal(t report.Table) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			string(r.Scenario),
			report.FormatPercent(r.DiscountRate),
			report.FormatPercent(r.GrowthRate),
			report.FormatMoney(r.FreeCashFlowYear1),
			report.FormatMoney(r.EnterpriseValue),
			report.FormatMoney(r.PricePerShare),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Scenario", "r", "g", "FCF (yr 1)", "EV (PV)", "Price/Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle.Align(lipgloss.Left)
			case !t.Rows[row].Defined() && col >= 4:
				return undefinedStyle
			default:
				return cellStyle
			}
		}).
		String()
}
