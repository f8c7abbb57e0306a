package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createDCFScenariosTool returns the dcf_scenarios tool definition
func createDCFScenariosTool() mcp.Tool {
	return mcp.NewTool("dcf_scenarios",
		mcp.WithDescription("Compute conservative, base and aggressive DCF scenarios (Gordon growth terminal value). Omitted inputs use the calculator defaults."),
		mcp.WithNumber("revenue", mcp.Description("Annual revenue (default 10000)")),
		mcp.WithNumber("operating_margin", mcp.Description("Operating margin, 0-1 (default 0.25)")),
		mcp.WithNumber("tax_rate", mcp.Description("Tax rate, 0-1 (default 0.21)")),
		mcp.WithNumber("reinvestment_rate", mcp.Description("Reinvestment rate, 0-1 (default 0.30)")),
		mcp.WithNumber("shares_outstanding", mcp.Description("Shares outstanding (default 1000)")),
		mcp.WithNumber("bear_discount_rate", mcp.Description("Conservative discount rate (default 0.12)")),
		mcp.WithNumber("bear_growth_rate", mcp.Description("Conservative terminal growth (default 0.01)")),
		mcp.WithNumber("base_discount_rate", mcp.Description("Base discount rate (default 0.10)")),
		mcp.WithNumber("base_growth_rate", mcp.Description("Base terminal growth (default 0.02)")),
		mcp.WithNumber("bull_discount_rate", mcp.Description("Aggressive discount rate (default 0.09)")),
		mcp.WithNumber("bull_growth_rate", mcp.Description("Aggressive terminal growth (default 0.03)")),
		mcp.WithNumber("horizon_years", mcp.Description("Terminal value discounting periods, 1-50 (default 5)")),
	)
}

// createListPromptsTool returns the list_prompts tool definition
func createListPromptsTool() mcp.Tool {
	return mcp.NewTool("list_prompts",
		mcp.WithDescription("List the copilot prompt templates (system, task and sample prompts)"),
		mcp.WithString("category",
			mcp.Description("Filter: system, task or sample"),
		),
	)
}

// createRenderPromptTool returns the render_prompt tool definition
func createRenderPromptTool() mcp.Tool {
	return mcp.NewTool("render_prompt",
		mcp.WithDescription("Render a task prompt (for example task.screener) with the given variables"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Prompt ID, e.g. task.screener, task.memo, task.upload_summary"),
		),
		mcp.WithObject("variables",
			mcp.Description("Template variables such as Ticker, Notes, Company, Hints, Profile, ToneLine"),
		),
	)
}

// createCapitalCostTool returns the capital_cost tool definition
func createCapitalCostTool() mcp.Tool {
	return mcp.NewTool("capital_cost",
		mcp.WithDescription("Estimate WACC from CAPM and target leverage, and spread it into conservative/base/aggressive discount rates"),
		mcp.WithNumber("risk_free_rate", mcp.Description("Risk-free rate (default 0.04)")),
		mcp.WithNumber("unlevered_beta", mcp.Description("Unlevered beta (default 1.0)")),
		mcp.WithNumber("equity_risk_premium", mcp.Description("Equity risk premium (default 0.05)")),
		mcp.WithNumber("pre_tax_cost_of_debt", mcp.Description("Pre-tax cost of debt (default 0.06)")),
		mcp.WithNumber("tax_rate", mcp.Description("Tax rate (default 0.21)")),
		mcp.WithNumber("debt_to_equity", mcp.Description("Target debt/equity (default 0.25)")),
		mcp.WithNumber("spread", mcp.Description("Spread between scenario rates (default 0.01)")),
	)
}
