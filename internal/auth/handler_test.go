package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/auth"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/identity/identitytest"
	"github.com/hcms-console/hcms-console/internal/screen/screentest"
	"github.com/hcms-console/hcms-console/internal/shared"
	_ "github.com/hcms-console/hcms-console/testing"
)

type stubRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *stubRecorder) Record(ctx context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubRecorder) Recent(ctx context.Context, email string, limit int) ([]audit.Entry, error) {
	return nil, nil
}

func newHarness(t *testing.T, backend http.HandlerFunc) (*screentest.Harness, *stubRecorder) {
	t.Helper()
	h := screentest.New(t, backend)
	rec := &stubRecorder{}
	handler := auth.NewHandler(h.Screen, rec)
	handler.MountRoutes(h.Router)
	handler.MountSessionRoutes(h.Router)
	return h, rec
}

func loginForm(user, password string) url.Values {
	return url.Values{"emailOrUsername": {user}, "password": {password}}
}

func TestLoginPage(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})
	res := h.Get("/login")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "<form")
	assert.Contains(t, res.Body.String(), `name="emailOrUsername"`)
}

func TestLoginStoresCredentialAndRedirects(t *testing.T) {
	token := identitytest.Token(t, "mgr@example.com", identity.RoleManager)
	var got auth.LoginRequest
	h, rec := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		screentest.Decode(t, r, &got)
		screentest.JSON(w, http.StatusOK, map[string]string{"token": token})
	})

	res := h.Post("/login", loginForm("mgr@example.com", "secret"))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard", res.Header().Get("Location"))
	assert.Equal(t, auth.LoginRequest{EmailOrUsername: "mgr@example.com", Password: "secret"}, got)
	assert.Equal(t, token, h.Credential())

	toast := h.Toast()
	require.NotNil(t, toast)
	assert.Equal(t, shared.ToastSuccess, toast.Kind)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.EventLogin, rec.entries[0].Event)
	assert.Equal(t, "MANAGER", rec.entries[0].Role)
}

func TestLoginRejectedShowsBackendMessage(t *testing.T) {
	h, rec := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		screentest.JSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
	})

	res := h.Post("/login", loginForm("nobody", "wrong"))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid username or password")
	assert.Empty(t, h.Credential())
	assert.Empty(t, rec.entries)
}

func TestRejectedLoginKeepsExistingSession(t *testing.T) {
	h, rec := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		screentest.JSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
	})
	previous := h.LoginAs("emp@example.com", identity.RoleEmployee)

	res := h.Post("/login", loginForm("other", "wrong"))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Invalid username or password")
	assert.Equal(t, previous, h.Credential())
	assert.Empty(t, rec.entries)
}

func TestLoginWithMalformedTokenKeepsPreviousSession(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		screentest.JSON(w, http.StatusOK, map[string]string{"token": "not-a-jwt"})
	})
	previous := h.LoginAs("emp@example.com", identity.RoleEmployee)

	res := h.Post("/login", loginForm("other", "pw"))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, previous, h.Credential())
}

func TestLoginValidatesBeforeCallingBackend(t *testing.T) {
	var calls atomic.Int32
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	res := h.Post("/login", loginForm("", ""))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "This field is required.")
	assert.Zero(t, calls.Load())
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.LoginAs("emp@example.com", identity.RoleEmployee)

	res := h.Get("/login")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard", res.Header().Get("Location"))
}

func TestLogoutClearsCredential(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.LoginAs("emp@example.com", identity.RoleEmployee)

	res := h.Post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
	assert.Empty(t, h.Credential())
}

func TestRegisterPostsAccount(t *testing.T) {
	var got auth.RegisterRequest
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		screentest.Decode(t, r, &got)
		screentest.JSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})

	res := h.Post("/register", url.Values{
		"username": {"ada"},
		"email":    {"ada@example.com"},
		"password": {"secret1"},
		"role":     {"MANAGER"},
	})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
	assert.Equal(t, auth.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "secret1", Role: "MANAGER"}, got)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call")
	})
	res := h.Post("/register", url.Values{
		"username": {"ada"},
		"email":    {"not-an-email"},
		"password": {"secret1"},
		"role":     {"ROOT"},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Contains(t, body, "Choose one of")
}

func TestRegisterSurfacesConflict(t *testing.T) {
	h, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		screentest.JSON(w, http.StatusConflict, map[string]string{"message": "Username already exists"})
	})
	res := h.Post("/register", url.Values{
		"username": {"ada"},
		"email":    {"ada@example.com"},
		"password": {"secret1"},
		"role":     {"EMPLOYEE"},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Username already exists")
}
