package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fairdesk/fairdesk/internal/auth"
	"github.com/fairdesk/fairdesk/internal/dashboard"
	"github.com/fairdesk/fairdesk/internal/observability"
	"github.com/fairdesk/fairdesk/internal/platform/httpx"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/site"
	"github.com/fairdesk/fairdesk/web"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Mounter is implemented by every tab handler.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Metrics          *observability.Metrics
	Backend          Pinger
	AuthHandler      *auth.Handler
	SiteHandler      *site.Handler
	DashboardHandler *dashboard.Handler
	TabHandlers      []Mounter
}

// NewRouter constructs the chi.Router with fairdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mwConfig := MiddlewareConfig{
		Logger:         logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}

	r := chi.NewRouter()
	for _, mw := range BaseStack(mwConfig) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	deps := map[string]Pinger{}
	if params.Backend != nil {
		deps["backend"] = params.Backend
	}
	if params.SessionManager != nil {
		deps["redis"] = params.SessionManager
	}
	r.Get("/readyz", readiness(logger, deps))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := web.Static()
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(mwConfig) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.SiteHandler != nil {
			params.SiteHandler.MountRoutes(r)
		}
		params.AuthHandler.MountPasswordRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireLogin(logger))
				params.DashboardHandler.MountRoutes(r)
				for _, h := range params.TabHandlers {
					h.MountRoutes(r)
				}
			})
			r.Route("/api", func(r chi.Router) {
				r.Use(auth.RequireLoginAPI)
				params.DashboardHandler.MountAPI(r)
			})
		})
	})

	return r
}

// readiness answers 200 only when every dependency responds.
func readiness(logger *slog.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		status := http.StatusOK
		report := make(map[string]string, len(deps))
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logger.Warn("readiness check failed", slog.String("dependency", name), slog.Any("error", err))
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		httpx.JSON(w, status, report)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
