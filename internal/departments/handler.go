package departments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/shared"
)

const listPath = "/departments"

// Handler serves the department screens.
type Handler struct {
	screen *screen.Screen
}

// NewHandler constructs a Handler.
func NewHandler(sc *screen.Screen) *Handler {
	return &Handler{screen: sc}
}

// MountRoutes registers department routes behind their guards.
func (h *Handler) MountRoutes(r chi.Router, gm guard.Middleware) {
	r.With(gm.For("/departments")).Get("/departments", h.list)
	r.With(gm.For("/departments/new")).Get("/departments/new", h.showNew)
	r.With(gm.For("/departments/new")).Post("/departments/new", h.create)
	r.With(gm.For("/departments/{id}/edit")).Get("/departments/{id}/edit", h.showEdit)
	r.With(gm.For("/departments/{id}/edit")).Post("/departments/{id}/edit", h.update)
	r.With(gm.For("/departments/{id}/delete")).Post("/departments/{id}/delete", h.delete)
}

// Columns is the department table.
func Columns() []listview.Column[Department] {
	return []listview.Column[Department]{
		{Key: "id", Label: "ID"},
		{Key: "name", Label: "Name"},
		{Key: "description", Label: "Description"},
		{Key: "actions", Label: "Actions", Render: func(d Department) listview.Cell {
			return listview.Cell{Actions: []listview.Action{
				{Label: "Edit", Href: fmt.Sprintf("/departments/%d/edit", d.ID), Style: "edit"},
				{Label: "Delete", Href: fmt.Sprintf("/departments/%d/delete", d.ID), Method: http.MethodPost, Confirm: "Delete?", Style: "danger"},
			}}
		}},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	client := NewClient(h.screen.Client(r))
	view, err := listview.Load(r.Context(), client.List, listview.ParseQuery(r.URL.Query()))
	screen.RenderList(h.screen, w, r, "Departments", view, err, func(v listview.View[Department]) screen.ListPage {
		return screen.ListPage{
			Heading: "Departments",
			Table:   listview.BuildTable(Columns(), v.Rows, v.Query, listPath),
			Links:   []screen.Link{{Label: "Add Department", Href: "/departments/new"}},
			Empty:   "No departments yet.",
		}
	})
}

type departmentForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"omitempty,max=500"`
	Code        string `form:"code" validate:"omitempty,max=20"`
	Active      bool   `form:"active"`
}

type formData struct {
	Form   departmentForm
	ID     int64
	Action string
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form departmentForm, errs map[string]string) {
	title, action := "Add Department", "/departments/new"
	if id > 0 {
		title, action = "Edit Department", fmt.Sprintf("/departments/%d/edit", id)
	}
	h.screen.Render(w, r, screen.Page{
		Template: "pages/department_form.html",
		Title:    title,
		Status:   status,
		Errors:   errs,
		Data:     formData{Form: form, ID: id, Action: action},
	})
}

func (h *Handler) showNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, 0, departmentForm{Active: true}, nil)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Department")
		return
	}
	d, err := NewClient(h.screen.Client(r)).Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.screen.NotFound(w, r, "Department")
			return
		}
		h.screen.Fail(w, r, err, "Failed to load department", listPath)
		return
	}
	form := departmentForm{Name: d.Name, Description: d.Description, Code: d.Code, Active: d.Active == nil || *d.Active}
	h.renderForm(w, r, http.StatusOK, id, form, nil)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0, func(ctx context.Context, c *Client, in Input) error {
		_, err := c.Create(ctx, in)
		return err
	}, "Department created")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Department")
		return
	}
	h.save(w, r, id, func(ctx context.Context, c *Client, in Input) error {
		_, err := c.Update(ctx, id, in)
		return err
	}, "Department updated")
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id int64, mutate func(context.Context, *Client, Input) error, done string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := departmentForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Code:        strings.TrimSpace(r.PostFormValue("code")),
		Active:      r.PostFormValue("active") != "",
	}
	if err := h.screen.Validate.Struct(form); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, id, form, screen.FormErrors(err))
		return
	}
	in := Input{Name: form.Name, Description: form.Description, Code: form.Code, Active: form.Active}
	if err := mutate(r.Context(), NewClient(h.screen.Client(r)), in); err != nil {
		if screen.Expired(err) {
			h.screen.Fail(w, r, err, "Failed to save department", listPath)
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err, "Failed to save department")}
		h.renderForm(w, r, http.StatusBadRequest, id, form, screen.Merge(errs, gateway.FieldErrors(err)))
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, done)
	screen.Redirect(w, r, listPath)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := screen.ID(r)
	if err != nil {
		h.screen.NotFound(w, r, "Department")
		return
	}
	if err := NewClient(h.screen.Client(r)).Delete(r.Context(), id); err != nil {
		h.screen.Fail(w, r, err, "Failed to delete department", listPath)
		return
	}
	h.screen.Notify(r, shared.ToastSuccess, "Department deleted")
	screen.Redirect(w, r, listPath)
}
