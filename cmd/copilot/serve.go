package main

import (
	"os"
	"os/signal"
	"syscall"

	"value_copilot/pkg/api"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
			cfg.LLM.ActiveProvider = provider
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := api.NewServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().String("provider", "", "active LLM provider (overrides config, \"mock\" runs offline)")
}
