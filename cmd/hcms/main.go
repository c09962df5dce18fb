package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hcms-console/hcms-console/internal/app"
	"github.com/hcms-console/hcms-console/internal/attendance"
	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/auth"
	"github.com/hcms-console/hcms-console/internal/dashboard"
	"github.com/hcms-console/hcms-console/internal/departments"
	"github.com/hcms-console/hcms-console/internal/employees"
	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/leaves"
	"github.com/hcms-console/hcms-console/internal/notifications"
	"github.com/hcms-console/hcms-console/internal/observability"
	"github.com/hcms-console/hcms-console/internal/payroll"
	"github.com/hcms-console/hcms-console/internal/platform/cache"
	"github.com/hcms-console/hcms-console/internal/platform/db"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/internal/view"
	"github.com/hcms-console/hcms-console/report"
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

	var recorder audit.Recorder = audit.Nop{}
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, db.Options{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns, ApplicationName: "hcms-console"})
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := audit.EnsureSchema(ctx, pool); err != nil {
			logger.Error("ensure audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		recorder = audit.NewPGRecorder(pool)
	} else {
		logger.Info("PG_DSN not set, session audit trail disabled")
	}

	sessionManager := shared.NewSessionManager(redisClient, shared.SessionOptions{
		Cookie: cfg.SessionCookie,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	})
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine(view.WithCurrency(cfg.Currency))
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	api := gateway.New(cfg.APIBaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		gateway.WithLogger(logger),
		gateway.WithRecorder(metrics),
	)
	routes := guard.DefaultTable()
	sc := screen.New(logger, templates, csrfManager, routes, api)

	var pdf report.Renderer
	if cfg.GotenbergURL != "" {
		pdf = report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Routes:         routes,
		StoreOptions:   app.SessionHooks(logger, recorder, metrics),
		Auth:           auth.NewHandler(sc, recorder),
		Screens: []app.Mounter{
			dashboard.NewHandler(sc, recorder),
			employees.NewHandler(sc),
			departments.NewHandler(sc),
			leaves.NewHandler(sc),
			attendance.NewHandler(sc, pdf),
			payroll.NewHandler(sc),
			notifications.NewHandler(sc),
		},
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
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
