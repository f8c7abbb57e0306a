package main

import (
	"fmt"

	"value_copilot/pkg/core/report"
	"value_copilot/pkg/core/valuation"

	"github.com/spf13/cobra"
)

var waccCmd = &cobra.Command{
	Use:   "wacc",
	Short: "Estimate a discount rate (CAPM + target leverage) and scenario rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cost := valuation.CalculateCapitalCost(waccInput)
		bear, base, bull := valuation.ScenarioDiscountRates(cost.WACC, waccSpread)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Levered beta:     %s\n", report.FormatDecimal(cost.LeveredBeta, 4))
		fmt.Fprintf(out, "Cost of equity:   %s\n", report.FormatPercent(cost.CostOfEquity))
		fmt.Fprintf(out, "After-tax debt:   %s\n", report.FormatPercent(cost.AfterTaxDebt))
		fmt.Fprintf(out, "Weights (E/D):    %s / %s\n", report.FormatPercent(cost.WeightEquity), report.FormatPercent(cost.WeightDebt))
		fmt.Fprintf(out, "WACC:             %s\n\n", report.FormatPercent(cost.WACC))
		fmt.Fprintf(out, "Scenario discount rates: conservative %s, base %s, aggressive %s\n",
			report.FormatPercent(bear), report.FormatPercent(base), report.FormatPercent(bull))
		fmt.Fprintf(out, "Try: copilot dcf --bear-r %s --base-r %s --bull-r %s\n",
			report.FormatDecimal(bear, 4), report.FormatDecimal(base, 4), report.FormatDecimal(bull, 4))
		return nil
	},
}

var (
	waccInput  = valuation.DefaultCapitalCostInput()
	waccSpread float64
)

func init() {
	f := waccCmd.Flags()
	f.Float64Var(&waccInput.RiskFreeRate, "rf", waccInput.RiskFreeRate, "risk-free rate")
	f.Float64Var(&waccInput.UnleveredBeta, "beta", waccInput.UnleveredBeta, "unlevered beta")
	f.Float64Var(&waccInput.EquityRiskPremium, "erp", waccInput.EquityRiskPremium, "equity risk premium")
	f.Float64Var(&waccInput.PreTaxCostOfDebt, "kd", waccInput.PreTaxCostOfDebt, "pre-tax cost of debt")
	f.Float64Var(&waccInput.TaxRate, "tax", waccInput.TaxRate, "tax rate")
	f.Float64Var(&waccInput.DebtToEquity, "de", waccInput.DebtToEquity, "target debt/equity")
	f.Float64Var(&waccSpread, "spread", 0.01, "spread between scenario discount rates")

	rootCmd.AddCommand(waccCmd)
}
