// Package screen carries the pieces every console handler needs to turn a
// backend call into a rendered page: the per-request gateway, toasts, the
// template data envelope and error presentation.
package screen

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/internal/view"
)

// ErrBadID is returned when a route id parameter is not a positive integer.
var ErrBadID = errors.New("screen: invalid id")

// Screen bundles handler dependencies.
type Screen struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Routes    *guard.Table
	Gateway   *gateway.Client
	Validate  *validator.Validate
	Now       func() time.Time
}

// New constructs a Screen with a fresh validator.
func New(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, routes *guard.Table, api *gateway.Client) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	if routes == nil {
		routes = guard.DefaultTable()
	}
	return &Screen{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrf,
		Routes:    routes,
		Gateway:   api,
		Validate:  NewValidator(),
		Now:       time.Now,
	}
}

// NewValidator reports fields by their form tag so validation errors line up
// with the backend's field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Client returns the gateway bound to the request's session store.
func (s *Screen) Client(r *http.Request) *gateway.Client {
	if store := session.FromContext(r.Context()); store != nil {
		return s.Gateway.WithStore(store)
	}
	return s.Gateway
}

// Notify replaces the browser's toast.
func (s *Screen) Notify(r *http.Request, kind, text string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetToast(kind, text, s.Now())
	}
}

// Page is what a handler hands to Render.
type Page struct {
	Template string
	Title    string
	Status   int
	Errors   map[string]string
	Toast    *shared.Toast
	Data     any
}

// Render assembles TemplateData for the current request and executes p. A
// toast set on p wins over the pending session toast.
func (s *Screen) Render(w http.ResponseWriter, r *http.Request, p Page) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	var csrfToken string
	if s.CSRF != nil && sess != nil {
		csrfToken, _ = s.CSRF.EnsureToken(ctx, sess)
	}
	toast := p.Toast
	if sess != nil {
		if pending := sess.PopToast(s.Now()); toast == nil {
			toast = pending
		}
	}
	snap := session.SnapshotFromContext(ctx)
	data := view.TemplateData{
		Title:       p.Title,
		CSRFToken:   csrfToken,
		Toast:       toast,
		CurrentPath: r.URL.Path,
		Identity:    snap.Identity,
		Nav:         view.Navigation(s.Routes, snap.Identity, r.URL.Path),
		Errors:      p.Errors,
		Data:        p.Data,
	}
	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	if err := s.Templates.RenderStatus(w, status, p.Template, data); err != nil {
		s.Logger.Error("render page", slog.String("template", p.Template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Redirect sends a 303 to path.
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// Expired reports whether err means the backend rejected the credential. The
// gateway has already cleared the session by then.
func Expired(err error) bool {
	return errors.Is(err, gateway.ErrUnauthorized)
}

// Fail presents a failed mutation: an expired session goes to login,
// anything else becomes an error toast and a redirect to back.
func (s *Screen) Fail(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if Expired(err) {
		s.Notify(r, shared.ToastError, shared.UserSafeMessage(err, fallback))
		Redirect(w, r, guard.LoginPath)
		return
	}
	s.Logger.Warn("backend call failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	s.Notify(r, shared.ToastError, shared.UserSafeMessage(err, fallback))
	Redirect(w, r, back)
}

// ErrorToast builds an inline error toast for a page that still renders.
func (s *Screen) ErrorToast(err error, fallback string) *shared.Toast {
	return &shared.Toast{Kind: shared.ToastError, Text: shared.UserSafeMessage(err, fallback), At: s.Now()}
}

// NotFound renders the shared not-found page.
func (s *Screen) NotFound(w http.ResponseWriter, r *http.Request, what string) {
	s.Render(w, r, Page{Template: "pages/error.html", Title: "Not found", Status: http.StatusNotFound, Data: what + " was not found."})
}

// FormErrors flattens validator errors into field → message.
func FormErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["general"] = err.Error()
		}
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + unit(fe) + "."
	case "max":
		return "Must be at most " + fe.Param() + unit(fe) + "."
	case "oneof":
		return "Choose one of: " + fe.Param() + "."
	case "gtfield", "gtefield":
		return "Must not be before " + fe.Param() + "."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "gte":
		return "Must be at least " + fe.Param() + "."
	case "numeric":
		return "Enter a number."
	case "datetime":
		return "Enter a date as YYYY-MM-DD."
	}
	return fe.Error()
}

func unit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

// Merge copies backend field errors into errs without overwriting.
func Merge(errs map[string]string, fields map[string]string) map[string]string {
	if errs == nil {
		errs = make(map[string]string)
	}
	for k, v := range fields {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	return errs
}

// ID parses the {id} route parameter.
func ID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadID
	}
	return id, nil
}
