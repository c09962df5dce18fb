package guard

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/session"
)

// Middleware adapts guards to chi middleware. The session store is read from
// the request context.
type Middleware struct {
	Table    *Table
	Logger   *slog.Logger
	Recorder Recorder
}

// Recorder observes denials.
type Recorder interface {
	ObserveRedirect(target string)
}

// Authenticated wraps a protected subtree with the session guard.
func (m Middleware) Authenticated(next http.Handler) http.Handler {
	return m.apply(RequireSession(), next)
}

// Roles wraps a leaf route with the role guard for roles.
func (m Middleware) Roles(roles ...identity.Role) func(http.Handler) http.Handler {
	if roles != nil && len(roles) == 0 {
		panic(fmt.Sprintf("%v: empty allow-list", ErrInvalidRule))
	}
	g := RequireRole(roles)
	return func(next http.Handler) http.Handler {
		return m.apply(g, next)
	}
}

// For wraps a leaf route with the full chain of the table rule registered
// under pattern. It panics when pattern is not in the table.
func (m Middleware) For(pattern string) func(http.Handler) http.Handler {
	if m.Table == nil {
		panic("guard: middleware has no table")
	}
	var (
		rule  Rule
		found bool
	)
	for _, r := range m.Table.Rules() {
		if r.Pattern == pattern {
			rule, found = r, true
			break
		}
	}
	if !found {
		panic(fmt.Sprintf("guard: no rule for %s", pattern))
	}
	g := rule.Guard()
	return func(next http.Handler) http.Handler {
		return m.apply(g, next)
	}
}

func (m Middleware) apply(g Guard, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g(session.SnapshotFromContext(r.Context()))
		if d.Allow {
			next.ServeHTTP(w, r)
			return
		}
		if m.Recorder != nil {
			m.Recorder.ObserveRedirect(d.Redirect)
		}
		if m.Logger != nil {
			m.Logger.Debug("navigation redirected", slog.String("path", r.URL.Path), slog.String("to", d.Redirect))
		}
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
	})
}

// Fallback handles paths no route matched: anonymous visitors go to the
// login screen, everyone else to the dashboard.
func (m Middleware) Fallback() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := m.Table.Evaluate(r.URL.Path, session.SnapshotFromContext(r.Context()))
		target := d.Redirect
		if d.Allow || target == "" {
			target = DashboardPath
		}
		if m.Recorder != nil {
			m.Recorder.ObserveRedirect(target)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}
