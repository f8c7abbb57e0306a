// Package api wires the HTTP handlers of the copilot into one chi router.
package api

import (
	"net/http"
	"time"

	"value_copilot/pkg/api/chat"
	apiconfig "value_copilot/pkg/api/config"
	"value_copilot/pkg/api/respond"
	"value_copilot/pkg/api/valuation"
	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/copilot"
	"value_copilot/pkg/core/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Deps are the long-lived services the handlers share.
type Deps struct {
	Config   *config.Config
	Service  *copilot.Service
	Sessions store.SessionStore
	Logger   *zap.Logger
}

// NewRouter configures all routes and middleware.
func NewRouter(d Deps) chi.Router {
	logger := d.Logger.Named("http")
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	origins := d.Config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	valuationHandler := valuation.NewHandler(logger)
	configHandler := apiconfig.NewHandler(d.Service.Manager(), logger)
	chatHandler := chat.NewHandler(d.Service, d.Sessions, d.Config.Upload.MaxBytes, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)

		r.Post("/valuation/dcf", valuationHandler.HandleDCF)
		r.Get("/valuation/defaults", valuationHandler.HandleDefaults)
		r.Post("/valuation/wacc", valuationHandler.HandleWACC)

		r.Get("/config", configHandler.HandleConfig)
		r.Post("/config/switch", configHandler.HandleSwitch)

		r.Get("/prompts/samples", chat.HandleSamples(d.Service.Prompts()))

		r.Route("/sessions", chatHandler.Routes)
	})

	return r
}

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC()})
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
