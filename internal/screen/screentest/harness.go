// Package screentest drives console handlers against a fake backend with a
// real cookie session held in miniredis.
package screentest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/identity/identitytest"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/internal/view"
)

// Harness is a browser with a cookie jar talking to a router.
type Harness struct {
	t        testing.TB
	Backend  *httptest.Server
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
	Screen   *screen.Screen
	Router   chi.Router
	cookies  map[string]*http.Cookie
}

// New builds a harness whose gateway points at backend. Routes mounted on
// Router run behind the session middleware and the default guard table.
func New(t testing.TB, backend http.Handler) *Harness {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, shared.SessionOptions{TTL: time.Hour})
	csrf := shared.NewCSRFManager("csrf-secret")

	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := gateway.New(srv.URL, gateway.WithLogger(logger))
	sc := screen.New(logger, engine, csrf, guard.DefaultTable(), api)

	r := chi.NewRouter()
	r.Use(screen.Sessions(sessions, logger, nil))

	return &Harness{
		t:        t,
		Backend:  srv,
		Sessions: sessions,
		CSRF:     csrf,
		Screen:   sc,
		Router:   r,
		cookies:  make(map[string]*http.Cookie),
	}
}

// Guarded returns the guard middleware over the default table.
func (h *Harness) Guarded() guard.Middleware {
	return guard.Middleware{Table: guard.DefaultTable()}
}

// LoginAs stores a fresh credential for role in the browser's cookie session.
func (h *Harness) LoginAs(email string, role identity.Role) string {
	h.t.Helper()
	token := identitytest.Token(h.t, email, role)
	h.SetCredential(token)
	return token
}

// SetCredential writes token into the cookie session as the console would.
func (h *Harness) SetCredential(token string) {
	h.t.Helper()
	ctx := context.Background()
	req := h.request(http.MethodGet, "/", nil)
	sess, err := h.Sessions.Load(ctx, req)
	if err != nil {
		h.t.Fatalf("load session: %v", err)
	}
	sess.Set(session.CredentialKey, token)
	rec := httptest.NewRecorder()
	if err := h.Sessions.Commit(ctx, rec, req, sess); err != nil {
		h.t.Fatalf("commit session: %v", err)
	}
	h.keep(rec)
}

// Credential returns the credential persisted in the cookie session.
func (h *Harness) Credential() string {
	h.t.Helper()
	return h.load().Get(session.CredentialKey)
}

// Toast returns the pending toast without consuming it.
func (h *Harness) Toast() *shared.Toast {
	h.t.Helper()
	return h.load().PeekToast()
}

// Get issues a GET through the router.
func (h *Harness) Get(path string) *httptest.ResponseRecorder {
	return h.serve(h.request(http.MethodGet, path, nil))
}

// Post submits form values through the router.
func (h *Harness) Post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	req := h.request(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(req)
}

// Request builds a request carrying the browser's cookies and ctx. It does
// not touch the cookie jar, so it may be served from several goroutines.
func (h *Harness) Request(ctx context.Context, method, path string) *http.Request {
	return h.request(method, path, nil).WithContext(ctx)
}

func (h *Harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)
	h.keep(rec)
	return rec
}

func (h *Harness) request(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	return req
}

func (h *Harness) keep(rec *httptest.ResponseRecorder) {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
}

func (h *Harness) load() *shared.Session {
	h.t.Helper()
	sess, err := h.Sessions.Load(context.Background(), h.request(http.MethodGet, "/", nil))
	if err != nil {
		h.t.Fatalf("load session: %v", err)
	}
	return sess
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON request body into v.
func Decode(t testing.TB, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}
