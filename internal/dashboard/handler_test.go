package dashboard_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/dashboard"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/screen/screentest"
	_ "github.com/hcms-console/hcms-console/testing"
)

type fakeRecorder struct {
	audit.Nop
	email string
}

func (f *fakeRecorder) Recent(ctx context.Context, email string, limit int) ([]audit.Entry, error) {
	f.email = email
	return []audit.Entry{{Email: email, Event: audit.EventLogin, IP: "10.0.0.7", CreatedAt: time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)}}, nil
}

func newHarness(t *testing.T, backend http.HandlerFunc, rec audit.Recorder) *screentest.Harness {
	t.Helper()
	h := screentest.New(t, backend)
	gm := h.Guarded()
	handler := dashboard.NewHandler(h.Screen, rec)
	h.Router.Group(func(r chi.Router) {
		r.Use(gm.Authenticated)
		handler.MountRoutes(r, gm)
	})
	return h
}

func counts(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/employees":
		screentest.JSON(w, http.StatusOK, map[string]any{"content": []any{map[string]any{"id": 1}}, "totalPages": 42, "totalElements": 42})
	case r.URL.Path == "/departments":
		screentest.JSON(w, http.StatusInternalServerError, map[string]string{"message": "down"})
	case r.URL.Path == "/leaves" && r.URL.Query().Get("status") == "PENDING":
		screentest.JSON(w, http.StatusOK, []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestDashboardCountsDegradeIndependently(t *testing.T) {
	rec := &fakeRecorder{}
	h := newHarness(t, counts, rec)
	h.LoginAs("admin@example.com", identity.RoleAdmin)

	res := h.Get("/dashboard")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "admin@example.com")
	assert.Contains(t, body, "Role: Admin")
	assert.Contains(t, body, `data-count="Employees">42<`)
	assert.Contains(t, body, `data-count="Departments">--<`)
	assert.Contains(t, body, `data-count="Pending Leaves">3<`)
	assert.Contains(t, body, "10.0.0.7")
	assert.Equal(t, "admin@example.com", rec.email)
}

func TestEmployeeSkipsForbiddenCounts(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s", r.URL.Path)
	}, nil)
	h.LoginAs("emp@example.com", identity.RoleEmployee)

	res := h.Get("/dashboard")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 3, strings.Count(res.Body.String(), ">--<"))
}

func TestExpiredCountEndsSession(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)
	h.LoginAs("mgr@example.com", identity.RoleManager)

	res := h.Get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
	assert.Empty(t, h.Credential())
}
