// Package httptransport assembles the public HTTP surface. Handlers stay thin
// and delegate to the domain services; transport concerns remain isolated here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verdict/internal/platform/middleware"
)

// Registrar is implemented by each feature handler to mount its routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing resource.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config carries the router-level dependencies.
type Config struct {
	SigningKey string
	Logger     *slog.Logger
	Health     []HealthChecker
}

// NewRouter wires all public endpoints. Authenticated routes sit behind the
// bearer-token middleware; metrics and health stay open.
func NewRouter(cfg Config, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(cfg.Health))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.SigningKey, cfg.Logger))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}

func healthHandler(checks []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c.Health(r.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
