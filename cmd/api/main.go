package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"value_copilot/pkg/api"
	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/logging"

	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("COPILOT_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}

	logger := logging.MustNew(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := api.NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise server", zap.Error(err))
	}
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
