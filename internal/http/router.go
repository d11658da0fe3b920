// Package httpapi assembles the public router: shared middleware, the module
// handlers behind bearer authentication, and the unauthenticated probes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ayuda/internal/platform/metrics"
	"ayuda/internal/platform/middleware"
	"ayuda/pkg/platform/httputil"
)

// Module is any handler that mounts its routes on a chi router.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Tokens         middleware.TokenValidator
	RequestTimeout time.Duration
	Modules        []Module
	Checks         map[string]HealthCheck
}

const defaultRequestTimeout = 30 * time.Second

// NewRouter wires all public endpoints.
func NewRouter(cfg Config) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}

	r.Get("/healthz", healthz(cfg.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(middleware.RequestTime)
		r.Use(middleware.RequireAuth(cfg.Tokens, cfg.Logger))
		for _, m := range cfg.Modules {
			m.Register(r)
		}
	})
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{"checks": results})
	}
}
