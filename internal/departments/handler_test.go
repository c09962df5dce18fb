package departments_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/departments"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/screen/screentest"
	_ "github.com/hcms-console/hcms-console/testing"
)

func newHarness(t *testing.T, backend http.HandlerFunc) *screentest.Harness {
	t.Helper()
	h := screentest.New(t, backend)
	gm := h.Guarded()
	handler := departments.NewHandler(h.Screen)
	h.Router.Group(func(r chi.Router) {
		r.Use(gm.Authenticated)
		handler.MountRoutes(r, gm)
	})
	return h
}

func TestListAcceptsBareArray(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/departments", r.URL.Path)
		screentest.JSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Engineering", "description": "Builds things"},
			{"id": 2, "name": "People"},
		})
	})
	h.LoginAs("root@example.com", identity.RoleSuperAdmin)

	res := h.Get("/departments")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Engineering")
	assert.Contains(t, body, "Builds things")
	assert.Contains(t, body, "/departments/2/edit")
	assert.NotContains(t, body, `class="pager"`)
}

func TestManagerCannotOpenDepartments(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called")
	})
	h.LoginAs("mgr@example.com", identity.RoleManager)

	for _, path := range []string{"/departments", "/departments/new", "/departments/3/edit"} {
		res := h.Get(path)
		assert.Equal(t, http.StatusSeeOther, res.Code, path)
		assert.Equal(t, "/dashboard", res.Header().Get("Location"), path)
	}
}

func TestCreateDepartment(t *testing.T) {
	var got departments.Input
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		screentest.Decode(t, r, &got)
		screentest.JSON(w, http.StatusCreated, map[string]any{"id": 5, "name": got.Name})
	})
	h.LoginAs("admin@example.com", identity.RoleAdmin)

	res := h.Post("/departments/new", url.Values{"name": {"Finance"}, "description": {"Money"}, "active": {"on"}})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/departments", res.Header().Get("Location"))
	assert.Equal(t, departments.Input{Name: "Finance", Description: "Money", Active: true}, got)
}

func TestCreateRequiresName(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called")
	})
	h.LoginAs("admin@example.com", identity.RoleAdmin)

	res := h.Post("/departments/new", url.Values{"description": {"x"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "This field is required.")
}

func TestDeleteConflictBecomesToast(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		screentest.JSON(w, http.StatusConflict, map[string]string{"message": "Department has employees"})
	})
	h.LoginAs("admin@example.com", identity.RoleAdmin)

	res := h.Post("/departments/4/delete", nil)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/departments", res.Header().Get("Location"))
	toast := h.Toast()
	require.NotNil(t, toast)
	assert.Equal(t, "Department has employees", toast.Text)
	assert.NotEmpty(t, h.Credential())
}
