package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/internal/auth"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/categories"
	"github.com/fairdesk/fairdesk/internal/dashboard"
	"github.com/fairdesk/fairdesk/internal/events"
	"github.com/fairdesk/fairdesk/internal/exhibitors"
	"github.com/fairdesk/fairdesk/internal/gallery"
	"github.com/fairdesk/fairdesk/internal/observability"
	"github.com/fairdesk/fairdesk/internal/platform/cache"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/site"
	"github.com/fairdesk/fairdesk/internal/team"
	"github.com/fairdesk/fairdesk/internal/view"
	"github.com/fairdesk/fairdesk/internal/visitors"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	client := backend.NewClient(cfg.APIBaseURL,
		backend.WithTimeout(cfg.APITimeout),
		backend.WithObserver(metrics),
	)

	sessionManager := shared.NewSessionManager(redisClient, "fairdesk_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := view.NewResponder(templates, csrfManager, logger)

	kit := &admin.Kit{
		Logger:    logger,
		Client:    client,
		Pages:     pages,
		Busy:      shared.NewBusyGuard(redisClient, cfg.BusyGuardTTL),
		Snapshots: shared.NewSnapshotCache(redisClient, cfg.SessionTTL),
		KeepStale: cfg.KeepStaleOnError,
	}
	rbacMiddleware := rbac.Middleware{Logger: logger}

	exhibitorHandler := exhibitors.NewHandler(kit, rbacMiddleware)
	visitorHandler := visitors.NewHandler(kit, rbacMiddleware)
	eventHandler := events.NewHandler(kit, rbacMiddleware)
	categoryHandler := categories.NewHandler(kit, rbacMiddleware)
	galleryHandler := gallery.NewHandler(kit, rbacMiddleware)
	teamHandler := team.NewHandler(kit, rbacMiddleware)

	dashboardHandler := dashboard.NewHandler(logger, map[rbac.Tab]dashboard.Tab{
		rbac.TabExhibitors: exhibitorHandler,
		rbac.TabVisitors:   visitorHandler,
		rbac.TabEvents:     eventHandler,
		rbac.TabCategories: categoryHandler,
		rbac.TabGallery:    galleryHandler,
		rbac.TabTeam:       teamHandler,
	})

	authHandler := auth.NewHandler(logger, auth.NewService(client), pages, sessionManager, csrfManager, cfg.LoginRateLimit)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		Backend:          client,
		AuthHandler:      authHandler,
		SiteHandler:      site.NewHandler(client, pages, logger),
		DashboardHandler: dashboardHandler,
		TabHandlers: []app.Mounter{
			exhibitorHandler,
			visitorHandler,
			eventHandler,
			categoryHandler,
			galleryHandler,
			teamHandler,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
