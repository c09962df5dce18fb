package payroll

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/shared"
)

const listPath = "/payroll"

// Handler serves the payroll screens.
type Handler struct {
	screen *screen.Screen
}

// NewHandler constructs a Handler.
func NewHandler(sc *screen.Screen) *Handler {
	return &Handler{screen: sc}
}

// MountRoutes registers payroll routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/payroll")).Get("/payroll", h.list)
	r.With(gm.For("/payroll/generate")).Get("/payroll/generate", h.showGenerate)
	r.With(gm.For("/payroll/generate")).Post("/payroll/generate", h.generate)
	r.With(gm.For("/payroll/{id}")).Get("/payroll/{id}", h.show)
	r.With(gm.For("/payroll/{id}/pdf")).Get("/payroll/{id}/pdf", h.payslip)
}

// Columns is the payroll table. money formats amounts.
func Columns(money func(float64) string) []listview.Column[Payroll] {
	return []listview.Column[Payroll]{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "employeeId", Label: "Employee", Sortable: true},
		{Key: "period", Label: "Period", Render: func(p Payroll) listview.Cell {
			return listview.Cell{Text: p.Period()}
		}},
		{Key: "netSalary", Label: "Net Salary", Sortable: true, Render: func(p Payroll) listview.Cell {
			return listview.Cell{Text: money(p.NetSalary)}
		}},
		{Key: "status", Label: "Status"},
		{Key: "actions", Label: "Actions", Render: func(p Payroll) listview.Cell {
			return listview.Cell{Actions: []listview.Action{
				{Label: "View", Href: fmt.Sprintf("/payroll/%d", p.ID)},
			}}
		}},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	view, err := listview.Load(r.Context(), client.List, listview.ParseQuery(r.URL.Query()))
	screen.RenderList(h.screen, w, r, "Payroll", view, err, func(v listview.View[Payroll]) screen.ListPage {
		return screen.ListPage{
			Heading: "Payroll",
			Table:   listview.BuildTable(Columns(h.screen.Templates.Money), v.Rows, v.Query, listPath),
			Pager:   screen.NewPagerLinks(v.Query, v.Pager, listPath),
			Links:   []screen.Link{{Label: "Generate Payroll", Href: "/payroll/generate"}},
			Empty:   "No payroll records.",
		}
	})
}

type detailData struct {
	Payroll Payroll
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Payroll record")
		return
	}
	p, err := NewClient(h.screen.Client(r)).Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.screen.NotFound(w, r, "Payroll record")
			return
		}
		h.screen.Fail(w, r, err, "Failed to load payroll", "/dashboard")
		return
	}
	h.screen.Render(w, r, screen.Page{
		Template: "pages/payroll_detail.html",
		Title:    fmt.Sprintf("Payroll #%d", p.ID),
		Data:     detailData{Payroll: p},
	})
}

// payslip streams the PDF straight through. Errors arrive before any byte is
// written, so they can still redirect.
func (h *Handler) payslip(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Payslip")
		return
	}
	if err := NewClient(h.screen.Client(r)).Payslip(r.Context(), id, gateway.ResponseSaver{W: w}); err != nil {
		h.screen.Fail(w, r, err, "Failed to download payslip", fmt.Sprintf("/payroll/%d", id))
	}
}

type generateForm struct {
	EmployeeID      string  `form:"employeeId" validate:"required,numeric"`
	Month           int     `form:"month" validate:"min=1,max=12"`
	Year            int     `form:"year" validate:"min=2000,max=2100"`
	BaseSalary      float64 `form:"baseSalary" validate:"gt=0"`
	Allowances      float64 `form:"allowances" validate:"gte=0"`
	Bonus           float64 `form:"bonus" validate:"gte=0"`
	Overtime        float64 `form:"overtime" validate:"gte=0"`
	ProvidentFund   float64 `form:"providentFund" validate:"gte=0"`
	OtherDeductions float64 `form:"otherDeductions" validate:"gte=0"`
	PaymentDate     string  `form:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
}

func (f generateForm) generation() Generation {
	id, _ := strconv.ParseInt(f.EmployeeID, 10, 64)
	return Generation{
		EmployeeID:      id,
		Month:           f.Month,
		Year:            f.Year,
		BaseSalary:      f.BaseSalary,
		Allowances:      f.Allowances,
		Bonus:           f.Bonus,
		Overtime:        f.Overtime,
		ProvidentFund:   f.ProvidentFund,
		OtherDeductions: f.OtherDeductions,
		PaymentDate:     f.PaymentDate,
	}
}

type generateData struct {
	Form generateForm
}

func (h *Handler) renderGenerate(w http.ResponseWriter, r *http.Request, status int, form generateForm, errs map[string]string) {
	h.screen.Render(w, r, screen.Page{
		Template: "pages/payroll_generate.html",
		Title:    "Generate Payroll",
		Status:   status,
		Errors:   errs,
		Data:     generateData{Form: form},
	})
}

func (h *Handler) showGenerate(w http.ResponseWriter, r *http.Request) {
	now := h.screen.Now()
	h.renderGenerate(w, r, http.StatusOK, generateForm{Month: int(now.Month()), Year: now.Year()}, nil)
}

// parseGenerate reads the form. Unparseable numbers are reported per field
// and left at zero.
func parseGenerate(r *http.Request) (generateForm, map[string]string) {
	errs := map[string]string{}
	num := func(field string) float64 {
		raw := strings.TrimSpace(r.PostFormValue(field))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[field] = "Enter a number."
			return 0
		}
		return v
	}
	form := generateForm{
		EmployeeID:      strings.TrimSpace(r.PostFormValue("employeeId")),
		Month:           int(num("month")),
		Year:            int(num("year")),
		BaseSalary:      num("baseSalary"),
		Allowances:      num("allowances"),
		Bonus:           num("bonus"),
		Overtime:        num("overtime"),
		ProvidentFund:   num("providentFund"),
		OtherDeductions: num("otherDeductions"),
		PaymentDate:     strings.TrimSpace(r.PostFormValue("paymentDate")),
	}
	return form, errs
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, errs := parseGenerate(r)
	if err := h.screen.Validate.Struct(form); err != nil {
		errs = screen.Merge(errs, screen.FormErrors(err))
	}
	if len(errs) > 0 {
		h.renderGenerate(w, r, http.StatusBadRequest, form, errs)
		return
	}

	p, err := NewClient(h.screen.Client(r)).Generate(r.Context(), form.generation())
	if err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to generate payroll", listPath)
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err, "Failed to generate payroll")}
		h.renderGenerate(w, r, http.StatusBadRequest, form, screen.Merge(errs, gateway.FieldErrors(err)))
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Payroll generated")
	if p.ID > 0 {
		screen.Redirect(w, r, fmt.Sprintf("/payroll/%d", p.ID))
		return
	}
	screen.Redirect(w, r, listPath)
}
