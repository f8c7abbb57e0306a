// copilot-mcp exposes the scenario DCF calculator and the prompt library
// as MCP tools over stdio.
package main

import (
	"fmt"
	"os"

	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/logging"
	"value_copilot/pkg/core/prompt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	configPath := os.Getenv("COPILOT_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; keep logging quiet and on stderr
	logger := logging.MustNew("warn", cfg.Logging.Format)
	defer logger.Sync()

	registry := prompt.Get()
	if cfg.Prompts.Dir != "" {
		if _, err := prompt.LoadFromDirectory(registry, cfg.Prompts.Dir); err != nil {
			logger.Fatal("failed to load prompt overrides", zap.Error(err))
		}
	}

	mcpServer := newServer(registry, logger)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal("MCP server failed", zap.Error(err))
	}
}

func newServer(registry *prompt.Registry, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"value-copilot",
		version,
		server.WithToolCapabilities(true),
	)
	s.AddTool(createDCFScenariosTool(), handleDCFScenarios(logger))
	s.AddTool(createCapitalCostTool(), handleCapitalCost())
	s.AddTool(createListPromptsTool(), handleListPrompts(registry))
	s.AddTool(createRenderPromptTool(), handleRenderPrompt(registry, logger))
	return s
}
