package employees

import (
	"context"
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

const listPath = "/employees"

// Handler serves the employee screens.
type Handler struct {
	screen *screen.Screen
}

// NewHandler constructs a Handler.
func NewHandler(sc *screen.Screen) *Handler {
	return &Handler{screen: sc}
}

// MountRoutes registers employee routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/employees")).Get("/employees", h.list)
	r.With(gm.For("/employees/new")).Get("/employees/new", h.showNew)
	r.With(gm.For("/employees/new")).Post("/employees/new", h.create)
	r.With(gm.For("/employees/{id}/edit")).Get("/employees/{id}/edit", h.showEdit)
	r.With(gm.For("/employees/{id}/edit")).Post("/employees/{id}/edit", h.update)
	r.With(gm.For("/employees/{id}/delete")).Post("/employees/{id}/delete", h.delete)
	r.With(gm.For("/employees/{id}")).Get("/employees/{id}", h.show)
}

// Columns is the employee table, shared with the terminal client. Actions
// only appear when canEdit.
func Columns(canEdit bool) []listview.Column[Employee] {
	cols := []listview.Column[Employee]{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "firstName", Label: "First Name", Sortable: true},
		{Key: "lastName", Label: "Last Name", Sortable: true},
		{Key: "email", Label: "Email", Sortable: true},
		{Key: "designation", Label: "Designation"},
	}
	cols = append(cols, listview.Column[Employee]{Key: "actions", Label: "Actions", Render: func(e Employee) listview.Cell {
		actions := []listview.Action{{Label: "View", Href: fmt.Sprintf("/employees/%d", e.ID)}}
		if canEdit {
			actions = append(actions,
				listview.Action{Label: "Edit", Href: fmt.Sprintf("/employees/%d/edit", e.ID), Style: "edit"},
				listview.Action{Label: "Delete", Href: fmt.Sprintf("/employees/%d/delete", e.ID), Method: http.MethodPost, Confirm: "Delete?", Style: "danger"},
			)
		}
		return listview.Cell{Actions: actions}
	}})
	return cols
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	q := listview.ParseQuery(r.URL.Query())
	view, err := listview.Load(r.Context(), client.List, q)
	canEdit := h.screen.Allowed(r, "/employees/{id}/edit")
	screen.RenderList(h.screen, w, r, "Employees", view, err, func(v listview.View[Employee]) screen.ListPage {
		page := screen.ListPage{
			Heading: "Employees",
			Table:   listview.BuildTable(Columns(canEdit), v.Rows, v.Query, listPath),
			Pager:   screen.NewPagerLinks(v.Query, v.Pager, listPath),
			Empty:   "No employees found.",
		}
		if h.screen.Allowed(r, "/employees/new") {
			page.Links = []screen.Link{{Label: "Add Employee", Href: "/employees/new"}}
		}
		return page
	})
}

type detailData struct {
	Employee Employee
	CanEdit  bool
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Employee")
		return
	}
	emp, err := NewClient(h.screen.Client(r)).Get(r.Context(), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.screen.Render(w, r, screen.Page{
		Template: "pages/employee_detail.html",
		Title:    emp.FullName(),
		Data:     detailData{Employee: emp, CanEdit: h.screen.Allowed(r, "/employees/{id}/edit")},
	})
}

type employeeForm struct {
	FirstName    string `form:"firstName" validate:"required,max=100"`
	LastName     string `form:"lastName" validate:"required,max=100"`
	Email        string `form:"email" validate:"required,email"`
	PhoneNumber  string `form:"phoneNumber" validate:"omitempty,max=20"`
	Designation  string `form:"designation" validate:"omitempty,max=100"`
	DepartmentID string `form:"departmentId" validate:"omitempty,numeric"`
	Gender       string `form:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Address      string `form:"address" validate:"omitempty,max=255"`
	HireDate     string `form:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	Status       string `form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE TERMINATED ON_LEAVE"`
}

func (f employeeForm) input() Input {
	in := Input{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Designation: f.Designation,
		Gender:      f.Gender,
		Address:     f.Address,
		HireDate:    f.HireDate,
		Status:      f.Status,
	}
	if id, err := strconv.ParseInt(f.DepartmentID, 10, 64); err == nil {
		in.DepartmentID = &id
	}
	return in
}

func formFrom(e Employee) employeeForm {
	f := employeeForm{
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,
		Designation: e.Designation,
		Gender:      e.Gender,
		Address:     e.Address,
		HireDate:    e.HireDate,
		Status:      e.Status,
	}
	if e.DepartmentID != nil {
		f.DepartmentID = strconv.FormatInt(*e.DepartmentID, 10)
	}
	return f
}

func parseForm(r *http.Request) employeeForm {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	return employeeForm{
		FirstName:    field("firstName"),
		LastName:     field("lastName"),
		Email:        field("email"),
		PhoneNumber:  field("phoneNumber"),
		Designation:  field("designation"),
		DepartmentID: field("departmentId"),
		Gender:       field("gender"),
		Address:      field("address"),
		HireDate:     field("hireDate"),
		Status:       field("status"),
	}
}

type formData struct {
	Form     employeeForm
	ID       int64
	Action   string
	Genders  []string
	Statuses []string
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form employeeForm, errs map[string]string) {
	title, action := "Add Employee", "/employees/new"
	if id > 0 {
		title, action = "Edit Employee", fmt.Sprintf("/employees/%d/edit", id)
	}
	h.screen.Render(w, r, screen.Page{
		Template: "pages/employee_form.html",
		Title:    title,
		Status:   status,
		Errors:   errs,
		Data:     formData{Form: form, ID: id, Action: action, Genders: Genders, Statuses: Statuses},
	})
}

func (h *Handler) showNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, employeeForm{Status: "ACTIVE"}, nil)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Employee")
		return
	}
	emp, err := NewClient(h.screen.Client(r)).Get(r.Context(), id)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, id, formFrom(emp), nil)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0, func(ctx context.Context, c *Client, in Input) error {
		_, err := c.Create(ctx, in)
		return err
	}, "Employee created")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Employee")
		return
	}
	h.save(w, r, id, func(ctx context.Context, c *Client, in Input) error {
		_, err := c.Update(ctx, id, in)
		return err
	}, "Employee updated")
}

// save validates the form, awaits the mutation and only then redirects to
// the list, whose GET performs the reload.
func (h *Handler) save(w http.ResponseWriter, r *http.Request, id int64, mutate func(context.Context, *Client, Input) error, done string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := parseForm(r)
	if err := h.screen.Validate.Struct(form); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, id, form, screen.FormErrors(err))
		return
	}
	if err := mutate(r.Context(), NewClient(h.screen.Client(r)), form.input()); err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to save employee", listPath)
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err, "Failed to save employee")}
		h.renderForm(w, r, http.StatusBadRequest, id, form, screen.Merge(errs, gateway.FieldErrors(err)))
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, done)
	screen.Redirect(w, r, listPath)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Employee")
		return
	}
	if err := NewClient(h.screen.Client(r)).Delete(r.Context(), id); err != nil {
		h.screen.Fail(w, r, err, "Failed to delete employee", listPath)
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Employee deleted")
	screen.Redirect(w, r, listPath)
}

func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gateway.ErrNotFound) {
		h.screen.NotFound(w, r, "Employee")
		return
	}
	h.screen.Fail(w, r, err, "Failed to load employee", listPath)
}
