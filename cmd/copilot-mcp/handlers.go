package main

import (
	"context"
	"fmt"
	"strings"

	"value_copilot/pkg/core/prompt"
	"value_copilot/pkg/core/report"
	"value_copilot/pkg/core/valuation"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// handleDCFScenarios implements the dcf_scenarios tool
func handleDCFScenarios(logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		set := valuation.DefaultScenarioSet()
		p := &set.Profile
		p.Revenue = request.GetFloat("revenue", p.Revenue)
		p.OperatingMargin = request.GetFloat("operating_margin", p.OperatingMargin)
		p.TaxRate = request.GetFloat("tax_rate", p.TaxRate)
		p.ReinvestmentRate = request.GetFloat("reinvestment_rate", p.ReinvestmentRate)
		p.SharesOutstanding = request.GetFloat("shares_outstanding", p.SharesOutstanding)
		set.Bear.DiscountRate = request.GetFloat("bear_discount_rate", set.Bear.DiscountRate)
		set.Bear.GrowthRate = request.GetFloat("bear_growth_rate", set.Bear.GrowthRate)
		set.Base.DiscountRate = request.GetFloat("base_discount_rate", set.Base.DiscountRate)
		set.Base.GrowthRate = request.GetFloat("base_growth_rate", set.Base.GrowthRate)
		set.Bull.DiscountRate = request.GetFloat("bull_discount_rate", set.Bull.DiscountRate)
		set.Bull.GrowthRate = request.GetFloat("bull_growth_rate", set.Bull.GrowthRate)
		set.HorizonYears = request.GetInt("horizon_years", set.HorizonYears)

		set = set.Sanitize()
		if !set.HorizonValid() {
			return mcp.NewToolResultError(fmt.Sprintf("horizon_years must be between %d and %d",
				valuation.MinHorizonYears, valuation.MaxHorizonYears)), nil
		}
		if err := set.ValidateRates(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t := report.NewTable(set)
		logger.Debug("dcf_scenarios computed", zap.Int("horizon", set.HorizonYears))
		return mcp.NewToolResultText(report.MarkdownReport(t)), nil
	}
}

// handleCapitalCost implements the capital_cost tool
func handleCapitalCost() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := valuation.DefaultCapitalCostInput()
		in.RiskFreeRate = request.GetFloat("risk_free_rate", in.RiskFreeRate)
		in.UnleveredBeta = request.GetFloat("unlevered_beta", in.UnleveredBeta)
		in.EquityRiskPremium = request.GetFloat("equity_risk_premium", in.EquityRiskPremium)
		in.PreTaxCostOfDebt = request.GetFloat("pre_tax_cost_of_debt", in.PreTaxCostOfDebt)
		in.TaxRate = request.GetFloat("tax_rate", in.TaxRate)
		in.DebtToEquity = request.GetFloat("debt_to_equity", in.DebtToEquity)

		cost := valuation.CalculateCapitalCost(in)
		bear, base, bull := valuation.ScenarioDiscountRates(cost.WACC, request.GetFloat("spread", 0.01))

		var b strings.Builder
		fmt.Fprintf(&b, "- Levered beta: %s\n", report.FormatDecimal(cost.LeveredBeta, 4))
		fmt.Fprintf(&b, "- Cost of equity: %s\n", report.FormatPercent(cost.CostOfEquity))
		fmt.Fprintf(&b, "- After-tax cost of debt: %s\n", report.FormatPercent(cost.AfterTaxDebt))
		fmt.Fprintf(&b, "- WACC: %s\n", report.FormatPercent(cost.WACC))
		fmt.Fprintf(&b, "- Scenario discount rates: conservative %s, base %s, aggressive %s\n",
			report.FormatPercent(bear), report.FormatPercent(base), report.FormatPercent(bull))
		return mcp.NewToolResultText(b.String()), nil
	}
}

// handleListPrompts implements the list_prompts tool
func handleListPrompts(registry *prompt.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := request.GetString("category", "")

		var b strings.Builder
		b.WriteString("| ID | Category | Name |\n|---|---|---|\n")
		for _, id := range registry.ListPrompts() {
			pt, err := registry.GetPrompt(id)
			if err != nil || (category != "" && pt.Category != category) {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", pt.ID, pt.Category, pt.Name)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// handleRenderPrompt implements the render_prompt tool
func handleRenderPrompt(registry *prompt.Registry, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil || id == "" {
			return mcp.NewToolResultError("Error: id parameter is required"), nil
		}

		pctx := prompt.NewContext()
		if vars, ok := request.GetArguments()["variables"].(map[string]any); ok {
			for k, v := range vars {
				pctx.Set(k, v)
			}
		}

		rendered, err := registry.Render(id, pctx)
		if err != nil {
			logger.Warn("render_prompt failed", zap.String("id", id), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("Render error: %v", err)), nil
		}
		return mcp.NewToolResultText(rendered), nil
	}
}
