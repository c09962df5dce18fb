// Package dashboard renders the landing screen: who is signed in and a few
// headline counts.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hcms-console/hcms-console/internal/audit"
	"github.com/hcms-console/hcms-console/internal/departments"
	"github.com/hcms-console/hcms-console/internal/employees"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/leaves"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
)

const (
	requestTimeout = 2 * time.Second
	recentLogins   = 5
	// Unavailable is shown for a count that could not be loaded.
	Unavailable = "--"
)

// Card is one headline count.
type Card struct {
	Label string
	Value string
	Href  string
}

type dashboardData struct {
	Cards  []Card
	Recent []audit.Entry
}

// Handler serves /dashboard.
type Handler struct {
	screen   *screen.Screen
	recorder audit.Recorder
}

// NewHandler constructs a Handler. recorder may be nil.
func NewHandler(sc *screen.Screen, recorder audit.Recorder) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{screen: sc, recorder: recorder}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For(guard.DashboardPath)).Get(guard.DashboardPath, h.show)
}

type counter struct {
	label   string
	href    string
	pattern string
	count   func(context.Context) (int, error)
}

func (h *Handler) counters(r *http.Request) []counter {
	api := h.screen.Client(r)
	return []counter{
		{"Employees", "/employees", "/employees", employees.NewClient(api).Count},
		{"Departments", "/departments", "/departments", departments.NewClient(api).Count},
		{"Pending Leaves", "/leaves/approval", "/leaves/approval", leaves.NewClient(api).CountPending},
	}
}

// show loads every permitted count concurrently. A failed count degrades to
// Unavailable; an expired credential ends the session.
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	counters := h.counters(r)
	cards := make([]Card, len(counters))
	errs := make([]error, len(counters))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range counters {
		cards[i] = Card{Label: c.label, Value: Unavailable}
		if !h.screen.Allowed(r, c.pattern) {
			continue
		}
		cards[i].Href = c.href
		g.Go(func() error {
			n, err := c.count(gctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			if n >= 0 {
				cards[i].Value = strconv.Itoa(n)
			}
			return nil
		})
	}
	var recent []audit.Entry
	snap := session.SnapshotFromContext(r.Context())
	if snap.Identity != nil {
		g.Go(func() error {
			entries, err := h.recorder.Recent(gctx, snap.Identity.Email, recentLogins)
			if err != nil {
				h.screen.Logger.Warn("load recent sessions", slog.Any("error", err))
				return nil
			}
			recent = entries
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to load dashboard", guard.DashboardPath)
			return
		}
		h.screen.Logger.Warn("dashboard count failed", slog.String("card", cards[i].Label), slog.Any("error", err))
	}

	h.screen.Render(w, r, screen.Page{
		Template: "pages/dashboard.html",
		Title:    "Dashboard",
		Data:     dashboardData{Cards: cards, Recent: recent},
	})
}
