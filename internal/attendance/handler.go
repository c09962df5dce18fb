package attendance

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/internal/view"
	"github.com/hcms-console/hcms-console/report"
)

const (
	todayPath   = "/attendance"
	historyPath = "/attendance/history"
	exportRows  = 100
)

// Handler serves the attendance screens.
type Handler struct {
	screen *screen.Screen
	pdf    report.Renderer
}

// NewHandler constructs a Handler. pdf may be nil, which disables export.
func NewHandler(sc *screen.Screen, pdf report.Renderer) *Handler {
	return &Handler{screen: sc, pdf: pdf}
}

// MountRoutes registers attendance routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/attendance")).Get("/attendance", h.today)
	r.With(gm.For("/attendance/check-in")).Post("/attendance/check-in", h.checkIn)
	r.With(gm.For("/attendance/check-out")).Post("/attendance/check-out", h.checkOut)
	r.With(gm.For("/attendance/history")).Get("/attendance/history", h.history)
	r.With(gm.For("/attendance/history/export")).Get("/attendance/history/export", h.export)
}

// Columns is the history table.
func Columns() []listview.Column[Record] {
	return []listview.Column[Record]{
		{Key: "date", Label: "Date", Sortable: true, Render: func(r Record) listview.Cell {
			return listview.Cell{Text: view.FormatDate(r.Date)}
		}},
		{Key: "checkInTime", Label: "Check In", Render: func(r Record) listview.Cell {
			return listview.Cell{Text: view.FormatTime(r.CheckInTime)}
		}},
		{Key: "checkOutTime", Label: "Check Out", Render: func(r Record) listview.Cell {
			return listview.Cell{Text: view.FormatTime(r.CheckOutTime)}
		}},
		{Key: "totalHours", Label: "Hours", Render: func(r Record) listview.Cell {
			if r.TotalHours == 0 {
				return listview.Cell{}
			}
			return listview.Cell{Text: strconv.FormatFloat(r.TotalHours, 'f', 2, 64)}
		}},
		{Key: "status", Label: "Status"},
	}
}

type todayData struct {
	Today *Record
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	page, err := NewClient(h.screen.Client(r)).Mine(r.Context(), listview.Query{Size: listview.DefaultPageSize})
	p := screen.Page{Template: "pages/attendance.html", Title: "Today's Attendance"}
	if err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to load attendance", todayPath)
			return
		}
		p.Toast = h.screen.ErrorToast(err, "Failed to load attendance")
	}
	p.Data = todayData{Today: Today(page.Rows, h.screen.Now())}
	h.screen.Render(w, r, p)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	rec, err := NewClient(h.screen.Client(r)).CheckIn(r.Context())
	if err != nil {
		h.screen.Fail(w, r, err, "Check-in failed", todayPath)
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, Stamped("Checked in", rec.CheckInTime))
	screen.Redirect(w, r, todayPath)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	rec, err := NewClient(h.screen.Client(r)).CheckOut(r.Context())
	if err != nil {
		h.screen.Fail(w, r, err, "Check-out failed", todayPath)
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, Stamped("Checked out", rec.CheckOutTime))
	screen.Redirect(w, r, todayPath)
}

// Stamped is the confirmation for a check-in or check-out at the given time.
func Stamped(text, at string) string {
	if at == "" {
		return text + "!"
	}
	return text + " at " + view.FormatTime(at)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	list, err := listview.Load(r.Context(), client.Mine, listview.ParseQuery(r.URL.Query()))
	screen.RenderList(h.screen, w, r, "Attendance History", list, err, func(v listview.View[Record]) screen.ListPage {
		page := screen.ListPage{
			Heading: "Attendance History",
			Table:   listview.BuildTable(Columns(), v.Rows, v.Query, historyPath),
			Empty:   "No attendance recorded yet.",
		}
		if v.Pager.TotalPages > 1 {
			page.Pager = screen.NewPagerLinks(v.Query, v.Pager, historyPath)
		}
		if h.pdf != nil {
			page.Links = []screen.Link{{Label: "Export PDF", Href: historyPath + "/export"}}
		}
		return page
	})
}

// ReportData feeds reports/attendance.html.
type ReportData struct {
	Email       string
	GeneratedAt string
	Rows        []Record
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.screen.Notify(r, shared.ToastError, "PDF export is not configured")
		screen.Redirect(w, r, historyPath)
		return
	}
	page, err := NewClient(h.screen.Client(r)).Mine(r.Context(), listview.Query{Size: exportRows})
	if err != nil {
		h.screen.Fail(w, r, err, "Failed to load attendance", historyPath)
		return
	}

	now := h.screen.Now()
	data := ReportData{GeneratedAt: now.Format("02 Jan 2006 15:04"), Rows: page.Rows}
	if id := session.SnapshotFromContext(r.Context()).Identity; id != nil {
		data.Email = id.Email
	}
	var html bytes.Buffer
	if err := h.screen.Templates.Execute(&html, "reports/attendance.html", data); err != nil {
		h.screen.Logger.Error("render attendance report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html.String(), report.Options{Landscape: true})
	if err != nil {
		h.screen.Logger.Error("render attendance pdf", slog.Any("error", err))
		msg := "PDF export failed"
		if errors.Is(err, report.ErrDisabled) {
			msg = "PDF export is not configured"
		}
		h.screen.Notify(r, shared.ToastError, msg)
		screen.Redirect(w, r, historyPath)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance-"+now.Format("2006-01")+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
