package leaves

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/shared"
)

const (
	minePath     = "/leaves"
	approvalPath = "/leaves/approval"
)

// Handler serves the leave screens.
type Handler struct {
	screen *screen.Screen
}

// NewHandler constructs a Handler.
func NewHandler(sc *screen.Screen) *Handler {
	return &Handler{screen: sc}
}

// MountRoutes registers leave routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/leaves")).Get("/leaves", h.mine)
	r.With(gm.For("/leaves/apply")).Get("/leaves/apply", h.showApply)
	r.With(gm.For("/leaves/apply")).Post("/leaves/apply", h.apply)
	r.With(gm.For("/leaves/approval")).Get("/leaves/approval", h.approval)
	r.With(gm.For("/leaves/{id}/status")).Post("/leaves/{id}/status", h.decide)
}

// MineColumns is the "my leaves" table.
func MineColumns() []listview.Column[Leave] {
	return []listview.Column[Leave]{
		{Key: "id", Label: "ID"},
		{Key: "leaveType", Label: "Type"},
		{Key: "startDate", Label: "Start"},
		{Key: "endDate", Label: "End"},
		{Key: "status", Label: "Status"},
	}
}

// ApprovalColumns is the approval queue table.
func ApprovalColumns() []listview.Column[Leave] {
	return []listview.Column[Leave]{
		{Key: "id", Label: "ID"},
		{Key: "employeeId", Label: "Employee"},
		{Key: "leaveType", Label: "Type"},
		{Key: "startDate", Label: "Start"},
		{Key: "endDate", Label: "End"},
		{Key: "actions", Label: "Actions", Render: func(l Leave) listview.Cell {
			href := fmt.Sprintf("/leaves/%d/status", l.ID)
			return listview.Cell{Actions: []listview.Action{
				{Label: "Approve", Href: href + "?status=" + StatusApproved, Method: http.MethodPost, Style: "edit"},
				{Label: "Reject", Href: href + "?status=" + StatusRejected, Method: http.MethodPost, Style: "danger"},
			}}
		}},
	}
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	view, err := listview.Load(r.Context(), client.Mine, listview.ParseQuery(r.URL.Query()))
	screen.RenderList(h.screen, w, r, "My Leaves", view, err, func(v listview.View[Leave]) screen.ListPage {
		return screen.ListPage{
			Heading: "My Leaves",
			Table:   listview.BuildTable(MineColumns(), v.Rows, v.Query, minePath),
			Links:   []screen.Link{{Label: "Apply Leave", Href: "/leaves/apply"}},
			Empty:   "You have not applied for leave yet.",
		}
	})
}

func (h *Handler) approval(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	view, err := listview.Load(r.Context(), client.Pending, listview.ParseQuery(r.URL.Query()))
	screen.RenderList(h.screen, w, r, "Leave Approvals", view, err, func(v listview.View[Leave]) screen.ListPage {
		return screen.ListPage{
			Heading: "Leave Approvals",
			Table:   listview.BuildTable(ApprovalColumns(), v.Rows, v.Query, approvalPath),
			Empty:   "No pending leave requests.",
		}
	})
}

// decide awaits the decision before redirecting, so the reload issued by the
// approval screen always observes it.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Leave request")
		return
	}
	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status == "" {
		status = strings.ToUpper(r.PostFormValue("status"))
	}
	if err := NewClient(h.screen.Client(r)).Decide(r.Context(), id, status); err != nil {
		if errors.Is(err, ErrInvalidDecision) {
			h.screen.Notify(r, shared.ToastError, "Choose approve or reject")
			screen.Redirect(w, r, approvalPath)
			return
		}
		h.screen.Fail(w, r, err, "Failed to update leave", approvalPath)
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Leave "+strings.ToLower(status))
	screen.Redirect(w, r, approvalPath)
}

type applyForm struct {
	LeaveType string `form:"leaveType" validate:"required,oneof=ANNUAL SICK CASUAL"`
	StartDate string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `form:"reason" validate:"omitempty,max=500"`
}

type applyData struct {
	Form  applyForm
	Types []string
}

func (h *Handler) renderApply(w http.ResponseWriter, r *http.Request, status int, form applyForm, errs map[string]string) {
	h.screen.Render(w, r, screen.Page{
		Template: "pages/leave_apply.html",
		Title:    "Apply Leave",
		Status:   status,
		Errors:   errs,
		Data:     applyData{Form: form, Types: Types},
	})
}

func (h *Handler) showApply(w http.ResponseWriter, r *http.Request) {
	h.renderApply(w, r, http.StatusOK, applyForm{LeaveType: TypeAnnual}, nil)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := applyForm{
		LeaveType: strings.TrimSpace(r.PostFormValue("leaveType")),
		StartDate: strings.TrimSpace(r.PostFormValue("startDate")),
		EndDate:   strings.TrimSpace(r.PostFormValue("endDate")),
		Reason:    strings.TrimSpace(r.PostFormValue("reason")),
	}
	errs := map[string]string{}
	if err := h.screen.Validate.Struct(form); err != nil {
		errs = screen.FormErrors(err)
	} else if !endNotBeforeStart(form.StartDate, form.EndDate) {
		errs["endDate"] = "End date must not be before start date."
	}
	if len(errs) > 0 {
		h.renderApply(w, r, http.StatusBadRequest, form, errs)
		return
	}

	_, err := NewClient(h.screen.Client(r)).Apply(r.Context(), Application{
		LeaveType: form.LeaveType,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
		Reason:    form.Reason,
	})
	if err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to apply for leave", minePath)
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err, "Failed to apply for leave")}
		h.renderApply(w, r, http.StatusBadRequest, form, screen.Merge(errs, gateway.FieldErrors(err)))
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Leave request submitted")
	screen.Redirect(w, r, minePath)
}

func endNotBeforeStart(start, end string) bool {
	s, err1 := time.Parse("2006-01-02", start)
	e, err2 := time.Parse("2006-01-02", end)
	if err1 != nil || err2 != nil {
		return false
	}
	return !e.Before(s)
}
