package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	screen *screen.Screen
	audit  audit.Recorder
}

// NewHandler constructs a Handler instance. A nil recorder disables the
// sign-in trail.
func NewHandler(sc *screen.Screen, recorder audit.Recorder) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{screen: sc, audit: recorder}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
}

// MountSessionRoutes registers routes that need a session.
func (h *Handler) MountSessionRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	EmailOrUsername string `form:"emailOrUsername" validate:"required"`
	Password        string `form:"password" validate:"required"`
}

type registerForm struct {
	Username string `form:"username" validate:"required,min=3"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Role     string `form:"role" validate:"required,oneof=EMPLOYEE MANAGER ADMIN SUPER_ADMIN"`
}

type loginPageData struct {
	Form loginForm
}

type registerPageData struct {
	Form  registerForm
	Roles []identity.Role
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if session.SnapshotFromContext(r.Context()).Authenticated() {
		screen.Redirect(w, r, guard.DashboardPath)
		return
	}
	h.screen.Render(w, r, screen.Page{Template: "pages/login.html", Title: "Sign in", Data: loginPageData{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		EmailOrUsername: strings.TrimSpace(r.PostFormValue("emailOrUsername")),
		Password:        r.PostFormValue("password"),
	}
	if err := h.screen.Validate.Struct(form); err != nil {
		h.loginFailed(w, r, form, screen.FormErrors(err))
		return
	}

	ctx := r.Context()
	store := session.FromContext(ctx)
	if store == nil {
		h.screen.Logger.Error("session store missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	store.SetLoading(true)
	defer store.SetLoading(false)

	// The unbound gateway: a rejected sign-in must not end the session the
	// browser already has.
	token, err := NewClient(h.screen.Gateway).Login(ctx, LoginRequest{EmailOrUsername: form.EmailOrUsername, Password: form.Password})
	if err != nil {
		msg := gateway.Message(err, "Login failed")
		if errors.Is(err, ErrNoToken) {
			msg = "Login failed"
		}
		store.SetLastError(msg)
		h.loginFailed(w, r, form, screen.Merge(map[string]string{"general": msg}, gateway.FieldErrors(err)))
		return
	}
	if err := store.SetCredential(ctx, token); err != nil {
		h.screen.Logger.Warn("login returned unusable token", slog.Any("error", err))
		store.SetLastError("Login failed")
		h.loginFailed(w, r, form, map[string]string{"general": shared.UserSafeMessage(err, "Login failed")})
		return
	}

	if sess := shared.SessionFromContext(ctx); sess != nil {
		sess.Rotate()
		h.screen.CSRF.Reissue(sess)
	}
	id := store.Identity()
	if err := h.audit.Record(ctx, audit.Entry{
		Email:     id.Email,
		Role:      string(id.Role),
		Event:     audit.EventLogin,
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}); err != nil {
		h.screen.Logger.Warn("record login", slog.Any("error", err))
	}
	h.screen.Logger.Info("signed in", slog.String("email", id.Email), slog.String("role", string(id.Role)))
	h.screen.Notify(r, shared.ToastSuccess, "Welcome back")
	screen.Redirect(w, r, guard.DashboardPath)
}

func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, form loginForm, errs map[string]string) {
	form.Password = ""
	h.screen.Render(w, r, screen.Page{
		Template: "pages/login.html",
		Title:    "Sign in",
		Status:   http.StatusBadRequest,
		Errors:   errs,
		Data:     loginPageData{Form: form},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if store := session.FromContext(r.Context()); store != nil {
		if err := store.Clear(r.Context(), session.ReasonLogout); err != nil {
			h.screen.Logger.Warn("clear session", slog.Any("error", err))
		}
	}
	h.screen.Notify(r, shared.ToastInfo, "You have been signed out")
	screen.Redirect(w, r, guard.LoginPath)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.screen.Render(w, r, screen.Page{
		Template: "pages/register.html",
		Title:    "Register",
		Data:     registerPageData{Form: registerForm{Role: string(identity.RoleEmployee)}, Roles: identity.AllRoles()},
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     strings.TrimSpace(r.PostFormValue("role")),
	}
	if err := h.screen.Validate.Struct(form); err != nil {
		h.registerFailed(w, r, form, screen.FormErrors(err))
		return
	}
	err := NewClient(h.screen.Gateway).Register(r.Context(), RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		errs := map[string]string{"general": gateway.Message(err, "Registration failed")}
		h.registerFailed(w, r, form, screen.Merge(errs, gateway.FieldErrors(err)))
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Account created. Please sign in.")
	screen.Redirect(w, r, guard.LoginPath)
}

func (h *Handler) registerFailed(w http.ResponseWriter, r *http.Request, form registerForm, errs map[string]string) {
	form.Password = ""
	h.screen.Render(w, r, screen.Page{
		Template: "pages/register.html",
		Title:    "Register",
		Status:   http.StatusBadRequest,
		Errors:   errs,
		Data:     registerPageData{Form: form, Roles: identity.AllRoles()},
	})
}
