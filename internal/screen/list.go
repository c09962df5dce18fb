package screen

import (
	"log/slog"
	"net/http"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/session"
)

// Link is a header button on a list screen.
type Link struct {
	Label string
	Href  string
}

// Filter is one option of a status filter.
type Filter struct {
	Label    string
	Href     string
	Selected bool
}

// PagerLinks is the rendered pagination control.
type PagerLinks struct {
	Current int
	Total   int
	HasPrev bool
	HasNext bool
	Prev    string
	Next    string
}

// ListPage is the data of pages/list.html.
type ListPage struct {
	Heading string
	Table   listview.Table
	Pager   *PagerLinks
	Links   []Link
	Filters []Filter
	Empty   string
}

// NewPagerLinks renders p for path, keeping the rest of q.
func NewPagerLinks(q listview.Query, p listview.Pager, path string) *PagerLinks {
	cur, total := p.Display()
	return &PagerLinks{
		Current: cur,
		Total:   total,
		HasPrev: p.HasPrev(),
		HasNext: p.HasNext(),
		Prev:    q.Link(path, p.Prev()),
		Next:    q.Link(path, p.Next()),
	}
}

// StatusFilters renders a status filter bar for path. The empty status means
// all.
func StatusFilters(q listview.Query, path string, statuses ...string) []Filter {
	out := make([]Filter, 0, len(statuses)+1)
	all := q
	all.Status = ""
	out = append(out, Filter{Label: "All", Href: all.Link(path, 0), Selected: q.Status == ""})
	for _, st := range statuses {
		next := q
		next.Status = st
		out = append(out, Filter{Label: st, Href: next.Link(path, 0), Selected: q.Status == st})
	}
	return out
}

// Allowed reports whether the signed-in identity may open pattern.
func (s *Screen) Allowed(r *http.Request, pattern string) bool {
	id := session.SnapshotFromContext(r.Context()).Identity
	return identity.Permits(id, s.Routes.Roles(pattern))
}

// RenderList renders a list screen. A failed load still renders the empty
// table with an error toast, unless the session expired.
func RenderList[T any](s *Screen, w http.ResponseWriter, r *http.Request, title string, view listview.View[T], err error, build func(listview.View[T]) ListPage) {
	if err != nil && Expired(err) {
		s.Fail(w, r, err, "Failed to load "+title, r.URL.Path)
		return
	}
	page := build(view)
	p := Page{Template: "pages/list.html", Title: title, Data: page}
	if err != nil {
		s.Logger.Warn("list load failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		p.Toast = s.ErrorToast(err, "Failed to load "+title)
	}
	s.Render(w, r, p)
}
