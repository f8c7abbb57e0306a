package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"value_copilot/pkg/core/agent"
	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/copilot"
	"value_copilot/pkg/core/llm"
	"value_copilot/pkg/core/prompt"
	"value_copilot/pkg/core/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// mockGreeting is what the offline "mock" provider answers with.
const mockGreeting = "Mock provider active: no model was called. Configure an API key and switch providers for real answers."

// Server owns the HTTP listener and everything the handlers depend on.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	http   *http.Server
}

// NewServer assembles prompts, providers, the session store and the router.
// Sessions live in Postgres when a database URL is configured, in memory otherwise.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	registry := prompt.Get()
	if cfg.Prompts.Dir != "" {
		n, err := prompt.LoadFromDirectory(registry, cfg.Prompts.Dir)
		if err != nil {
			return nil, fmt.Errorf("load prompts from %s: %w", cfg.Prompts.Dir, err)
		}
		logger.Info("prompt overrides loaded", zap.String("dir", cfg.Prompts.Dir), zap.Int("count", n))
	}

	var manager *agent.Manager
	if cfg.LLM.ActiveProvider == llm.ProviderMock {
		mock := llm.NewMockProvider()
		mock.Fallback = mockGreeting
		manager = agent.NewManagerWithProviders(cfg.LLM, logger, mock)
	} else {
		manager = agent.NewManager(cfg.LLM, logger)
	}

	s := &Server{cfg: cfg, logger: logger}

	var sessions store.SessionStore = store.NewMemoryStore()
	if cfg.Database.URL != "" {
		pool, err := store.OpenPool(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		pg, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		s.pool = pool
		sessions = pg
		logger.Info("sessions stored in postgres")
	} else {
		logger.Info("sessions stored in memory")
	}

	service := copilot.NewService(manager, registry, copilot.SettingsFromConfig(cfg), logger)

	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           NewRouter(Deps{Config: cfg, Service: service, Sessions: sessions, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 30*time.Second, // covers the slowest model call
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening",
			zap.String("addr", s.cfg.Server.Addr),
			zap.String("provider", s.cfg.LLM.ActiveProvider))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
