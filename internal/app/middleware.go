package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/observability"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	StoreOptions   screen.StoreOptions
}

// SessionHooks reports every credential clear to metrics and the audit
// trail. Logouts and backend rejections are recorded as distinct events.
func SessionHooks(logger *slog.Logger, recorder audit.Recorder, metrics *observability.Metrics) screen.StoreOptions {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return func(r *http.Request) []session.Option {
		ip, agent := r.RemoteAddr, r.UserAgent()
		return []session.Option{session.OnClear(func(ctx context.Context, prev session.Snapshot, reason string) {
			metrics.ObserveSessionClear(reason)
			if prev.Identity == nil {
				return
			}
			event := audit.EventLogout
			if reason == session.ReasonUnauthorized {
				event = audit.EventExpired
			}
			logger.Info("session cleared", slog.String("email", prev.Identity.Email), slog.String("reason", reason))
			if err := recorder.Record(context.WithoutCancel(ctx), audit.Entry{
				Email:     prev.Identity.Email,
				Role:      string(prev.Identity.Role),
				Event:     event,
				IP:        ip,
				UserAgent: agent,
			}); err != nil {
				logger.Warn("record session clear", slog.Any("error", err))
			}
		})}
	}
}

// MiddlewareStack installs the console middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		FeaturePolicy:         "none",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         cfg.Config == nil || !cfg.Config.IsProduction(),
	})

	csrfMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			token := r.PostFormValue(shared.CSRFFormField)
			if token == "" {
				token = r.Header.Get(shared.CSRFHeader)
			}
			if err := cfg.CSRFManager.VerifyToken(r.Context(), sess, token); err != nil {
				cfg.Logger.Warn("csrf validation failed", slog.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	timeout := 30 * time.Second
	limit := 120
	if cfg.Config != nil {
		if cfg.Config.AppRequestTimeout > 0 {
			timeout = cfg.Config.AppRequestTimeout
		}
		if cfg.Config.RateLimit > 0 {
			limit = cfg.Config.RateLimit
		}
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		screen.Sessions(cfg.SessionManager, cfg.Logger, cfg.StoreOptions),
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
		csrfMiddleware,
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}
