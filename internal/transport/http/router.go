// Package httptransport assembles the HTTP surface: shared middleware, the
// module handlers, the admin group and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"taxsafe/internal/platform/metrics"
	"taxsafe/pkg/platform/httputil"
	"taxsafe/pkg/platform/middleware/admin"
	"taxsafe/pkg/platform/middleware/metadata"
	"taxsafe/pkg/platform/middleware/request"
	"taxsafe/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Registrar is implemented by module handlers.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config lists what the router mounts. Admin handlers are only reachable
// with the admin token.
type Config struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	AdminToken string
	Public     []Registrar
	Admin      []Registrar
	Health     map[string]HealthCheck
}

func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", healthHandler(cfg.Health))
	r.Handle("/metrics", metrics.Handler())

	for _, h := range cfg.Public {
		h.Register(r)
	}
	if len(cfg.Admin) > 0 {
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
			for _, h := range cfg.Admin {
				h.Register(r)
			}
		})
	}
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = "unavailable"
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
