package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/identity/identitytest"
	"github.com/hcms-console/hcms-console/internal/session"
)

func snapshotFor(t *testing.T, role identity.Role) session.Snapshot {
	t.Helper()
	store := session.NewStore(nil)
	require.NoError(t, store.SetCredential(context.Background(), identitytest.Token(t, "u@hcms.local", role)))
	return store.Snapshot()
}

func TestRoleGatedPathWhileLoggedOutGoesToLogin(t *testing.T) {
	table := guard.DefaultTable()
	d := table.Evaluate("/departments", session.Snapshot{})
	assert.False(t, d.Allow)
	assert.Equal(t, guard.LoginPath, d.Redirect)
}

func TestRoleGatedPathWithInsufficientRoleGoesToDashboard(t *testing.T) {
	table := guard.DefaultTable()
	d := table.Evaluate("/departments", snapshotFor(t, identity.RoleEmployee))
	assert.False(t, d.Allow)
	assert.Equal(t, guard.DashboardPath, d.Redirect)
}

func TestDefaultTableDecisions(t *testing.T) {
	table := guard.DefaultTable()
	cases := []struct {
		path  string
		role  identity.Role
		allow bool
	}{
		{"/dashboard", identity.RoleEmployee, true},
		{"/employees", identity.RoleManager, true},
		{"/employees", identity.RoleEmployee, false},
		{"/employees/new", identity.RoleManager, false},
		{"/employees/new", identity.RoleAdmin, true},
		{"/employees/42", identity.RoleEmployee, true},
		{"/employees/42/edit", identity.RoleSuperAdmin, true},
		{"/employees/42/edit", identity.RoleManager, false},
		{"/leaves/approval", identity.RoleManager, true},
		{"/leaves/approval", identity.RoleEmployee, false},
		{"/payroll", identity.RoleAdmin, true},
		{"/payroll", identity.RoleManager, false},
		{"/payroll/9", identity.RoleEmployee, true},
		{"/notifications", identity.RoleEmployee, true},
	}
	for _, tc := range cases {
		d := table.Evaluate(tc.path, snapshotFor(t, tc.role))
		assert.Equal(t, tc.allow, d.Allow, "%s as %s", tc.path, tc.role)
		if !tc.allow {
			assert.Equal(t, guard.DashboardPath, d.Redirect)
		}
	}
}

func TestUnknownPathRedirects(t *testing.T) {
	table := guard.DefaultTable()
	assert.Equal(t, guard.LoginPath, table.Evaluate("/nowhere", session.Snapshot{}).Redirect)
	assert.Equal(t, guard.DashboardPath, table.Evaluate("/nowhere", snapshotFor(t, identity.RoleAdmin)).Redirect)
}

func TestChainFirstDenialWins(t *testing.T) {
	deny := func(to string) guard.Guard {
		return func(session.Snapshot) guard.Decision { return guard.RedirectTo(to) }
	}
	allow := func(session.Snapshot) guard.Decision { return guard.Allowed }

	d := guard.Chain(allow, deny("/a"), deny("/b"))(session.Snapshot{})
	assert.Equal(t, "/a", d.Redirect)
	assert.True(t, guard.Chain(allow, allow)(session.Snapshot{}).Allow)
	assert.True(t, guard.Chain()(session.Snapshot{}).Allow)
}

func TestNewRuleValidation(t *testing.T) {
	_, err := guard.NewRule("/x", []identity.Role{}...)
	assert.ErrorIs(t, err, guard.ErrInvalidRule)

	_, err = guard.NewRule("/x", identity.Role("ROOT"))
	assert.ErrorIs(t, err, guard.ErrInvalidRule)

	_, err = guard.NewRule("x")
	assert.ErrorIs(t, err, guard.ErrInvalidRule)

	rule, err := guard.NewRule("/x")
	require.NoError(t, err)
	assert.Nil(t, rule.Roles)

	_, err = guard.NewTable(guard.Rule{Pattern: "/y", Roles: []identity.Role{}})
	assert.ErrorIs(t, err, guard.ErrInvalidRule)
}

func TestRuleMatch(t *testing.T) {
	rule := guard.Rule{Pattern: "/employees/{id}/edit"}
	assert.True(t, rule.Match("/employees/5/edit"))
	assert.True(t, rule.Match("/employees/5/edit/"))
	assert.False(t, rule.Match("/employees//edit"))
	assert.False(t, rule.Match("/employees/5"))
	assert.True(t, guard.Rule{Pattern: "/"}.Match("/"))
}

func TestMiddlewareComposition(t *testing.T) {
	mw := guard.Middleware{Table: guard.DefaultTable()}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticated)
		r.With(mw.For("/payroll")).Get("/payroll", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.With(mw.Roles(guard.StaffRoles()...)).Get("/leaves/approval", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(path string, snap *session.Store) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if snap != nil {
			req = req.WithContext(session.NewContext(req.Context(), snap))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("/payroll", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.LoginPath, rec.Header().Get("Location"))

	manager := session.NewStore(nil)
	require.NoError(t, manager.SetCredential(context.Background(), identitytest.Token(t, "m@hcms.local", identity.RoleManager)))

	rec = serve("/payroll", manager)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.DashboardPath, rec.Header().Get("Location"))

	rec = serve("/leaves/approval", manager)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForPanicsOnUnknownPattern(t *testing.T) {
	mw := guard.Middleware{Table: guard.DefaultTable()}
	assert.Panics(t, func() { mw.For("/unregistered") })
}

type redirects []string

func (r *redirects) ObserveRedirect(target string) { *r = append(*r, target) }

func TestFallbackRedirects(t *testing.T) {
	var seen redirects
	mw := guard.Middleware{Table: guard.DefaultTable(), Recorder: &seen}
	r := chi.NewRouter()
	r.NotFound(mw.Fallback().ServeHTTP)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, guard.LoginPath, rec.Header().Get("Location"))

	store := session.NewStore(nil)
	require.NoError(t, store.SetCredential(context.Background(), identitytest.Token(t, "e@hcms.local", identity.RoleEmployee)))
	req := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(session.NewContext(req.Context(), store)))
	assert.Equal(t, guard.DashboardPath, rec.Header().Get("Location"))

	assert.Equal(t, redirects{guard.LoginPath, guard.DashboardPath}, seen)
}
