package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hcms-console/hcms-console/internal/auth"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/observability"
	"github.com/hcms-console/hcms-console/internal/platform/httpx"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/web"
)

// Mounter registers a screen's guarded routes.
type Mounter interface {
	MountRoutes(r chi.Router, gm guard.Middleware)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Routes         *guard.Table
	StoreOptions   screen.StoreOptions
	Auth           *auth.Handler
	Screens        []Mounter
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		StoreOptions:   params.StoreOptions,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	routes := params.Routes
	if routes == nil {
		routes = guard.DefaultTable()
	}
	gm := guard.Middleware{Table: routes, Logger: params.Logger}
	if params.Metrics != nil {
		gm.Recorder = params.Metrics
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.Auth != nil {
		params.Auth.MountRoutes(r)
	}
	r.Group(func(r chi.Router) {
		r.Use(gm.Authenticated)
		if params.Auth != nil {
			params.Auth.MountSessionRoutes(r)
		}
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, guard.DashboardPath, http.StatusSeeOther)
		})
		for _, s := range params.Screens {
			s.MountRoutes(r, gm)
		}
	})

	staticFS, err := web.Static()
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(gm.Fallback().ServeHTTP)
	return r
}

// staticCacheHandler lets browsers keep embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
