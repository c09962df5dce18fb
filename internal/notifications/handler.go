package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/platform/httpx"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
)

const listPath = "/notifications"

// Handler serves the notification screens.
type Handler struct {
	screen *screen.Screen
	polls  singleflight.Group
}

// NewHandler constructs a Handler.
func NewHandler(sc *screen.Screen) *Handler {
	return &Handler{screen: sc}
}

// MountRoutes registers notification routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/notifications")).Get("/notifications", h.list)
	r.With(gm.For("/notifications/unread.json")).Get("/notifications/unread.json", h.unread)
	r.With(gm.For("/notifications/{id}/read")).Post("/notifications/{id}/read", h.markRead)
}

type listData struct {
	Items  []Notification
	Unread int
	Pager  *screen.PagerLinks
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	view, err := listview.Load(r.Context(), client.List, listview.ParseQuery(r.URL.Query()))
	p := screen.Page{Template: "pages/notifications.html", Title: "Notifications"}
	if err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to load notifications", listPath)
			return
		}
		p.Toast = h.screen.ErrorToast(err, "Failed to load notifications")
	}
	data := listData{Items: view.Rows, Unread: Unread(view.Rows)}
	if view.Pager.TotalPages > 1 {
		data.Pager = screen.NewPagerLinks(view.Query, view.Pager, listPath)
	}
	p.Data = data
	h.screen.Render(w, r, p)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Notification")
		return
	}
	if err := NewClient(h.screen.Client(r)).MarkRead(r.Context(), id); err != nil {
		h.screen.Fail(w, r, err, "Failed to mark notification read", listPath)
		return
	}
	screen.Redirect(w, r, listPath)
}

type unreadPayload struct {
	Unread int `json:"unread"`
}

// pollTimeout bounds a shared unread-count call, which outlives the request
// that started it.
const pollTimeout = 10 * time.Second

// unread answers the header badge poll. Concurrent polls for the same
// credential share one backend call; each waiter gives up only on its own
// context.
func (h *Handler) unread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := session.SnapshotFromContext(ctx).Credential
	client := NewClient(h.screen.Client(r))
	ch := h.polls.DoChan(key, func() (any, error) {
		pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pollTimeout)
		defer cancel()
		return client.UnreadCount(pollCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return
	}
	if res.Err != nil {
		// The shared call cleared the store of the request that started it.
		if errors.Is(res.Err, gateway.ErrUnauthorized) {
			if store := session.FromContext(ctx); store != nil {
				_ = store.Clear(ctx, session.ReasonUnauthorized)
			}
		}
		h.screen.Logger.Warn("unread count failed", slog.Any("error", res.Err))
		httpx.RespondError(w, res.Err)
		return
	}
	httpx.JSON(w, http.StatusOK, unreadPayload{Unread: res.Val.(int)})
}
