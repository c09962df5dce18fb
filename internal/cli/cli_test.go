package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/identity/identitytest"
	"github.com/hcms-console/hcms-console/internal/session"
)

type harness struct {
	t         *testing.T
	backend   *httptest.Server
	persister *session.MemoryPersister
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	calls     atomic.Int32
}

func newHarness(t *testing.T, backend http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{t: t, persister: &session.MemoryPersister{}}
	h.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		backend(w, r)
	}))
	t.Cleanup(h.backend.Close)
	return h
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func (h *harness) loginAs(email string, role identity.Role) string {
	token := identitytest.TokenWithExpiry(h.t, email, role, fixedNow.Add(24*time.Hour))
	require.NoError(h.t, h.persister.Save(context.Background(), token))
	return token
}

func (h *harness) run(stdin string, args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Execute(context.Background(), args, Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Config: &Config{
			API:     APIConfig{BaseURL: h.backend.URL, Timeout: 5 * time.Second},
			Output:  OutputConfig{Colors: false, Currency: "USD"},
			Logging: LoggingConfig{Level: "error"},
		},
		Persister: h.persister,
		Now:       func() time.Time { return fixedNow },
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginReadsPasswordFromStdinAndPersists(t *testing.T) {
	var token string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jane@hcms.local", body["emailOrUsername"])
		assert.Equal(t, "s3cret", body["password"])
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	})
	token = identitytest.TokenWithExpiry(t, "jane@hcms.local", identity.RoleManager, fixedNow.Add(24*time.Hour))

	code := h.run("s3cret\n", "login", "--user", "jane@hcms.local")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "[OK] Signed in as jane@hcms.local (Manager)")

	stored, err := h.persister.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	code = h.run("", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "Email: jane@hcms.local")
	assert.Contains(t, h.stdout.String(), "Role: Manager")
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	code := h.run("", "login", "-u", "jane", "-p", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "[ERROR] Invalid credentials")
	_, err := h.persister.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFailedReloginKeepsStoredCredential(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})
	token := h.loginAs("jane@hcms.local", identity.RoleManager)

	code := h.run("", "login", "-u", "other", "-p", "wrong")
	assert.Equal(t, 1, code)
	stored, err := h.persister.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestProtectedCommandWithoutSessionNeverCallsBackend(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})

	code := h.run("", "employees", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "not logged in")
	assert.Zero(t, h.calls.Load())
}

func TestRoleGuardRefusesLocally(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	code := h.run("", "departments", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Employee cannot open /departments")

	code = h.run("", "leaves", "approve", "4")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "cannot open /leaves/4/status")
	assert.Zero(t, h.calls.Load())
}

func TestPendingLeavesTable(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leaves", r.URL.Path)
		assert.Equal(t, "PENDING", r.URL.Query().Get("status"))
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{
			"content": []map[string]any{
				{"id": 4, "employeeId": 12, "leaveType": "SICK", "startDate": "2026-10-20", "endDate": "2026-10-21", "status": "PENDING"},
			},
			"totalPages": 2,
		})
	})
	h.loginAs("mgr@hcms.local", identity.RoleManager)

	code := h.run("", "leaves", "pending")
	require.Equal(t, 0, code, h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "Leave Approval")
	assert.Contains(t, out, "SICK")
	assert.Contains(t, out, "2026-10-20")
	assert.Contains(t, out, "Page 1 / 2")
	assert.NotContains(t, out, "Approve | Reject")
}

func TestApproveSendsDecision(t *testing.T) {
	var got string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/leaves/4/status", r.URL.Path)
		got = r.URL.Query().Get("status")
		writeJSON(w, http.StatusOK, map[string]any{"id": 4, "status": got})
	})
	h.loginAs("mgr@hcms.local", identity.RoleManager)

	code := h.run("", "leaves", "approve", "4")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, "APPROVED", got)
	assert.Contains(t, h.stdout.String(), "[OK] Leave approved")
}

func TestUnauthorizedClearsStoredCredential(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
	})
	h.loginAs("admin@hcms.local", identity.RoleAdmin)

	code := h.run("", "payroll", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "session expired")
	assert.Equal(t, int32(1), h.calls.Load())

	_, err := h.persister.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)

	code = h.run("", "payroll", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "not logged in")
	assert.Equal(t, int32(1), h.calls.Load())
}

func TestExpiredStoredCredentialIsDiscarded(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})
	expired := identitytest.TokenWithExpiry(t, "old@hcms.local", identity.RoleAdmin, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, h.persister.Save(context.Background(), expired))

	code := h.run("", "whoami")
	assert.Equal(t, 1, code)
	_, err := h.persister.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	require.Equal(t, 0, h.run("", "logout"))
	assert.Contains(t, h.stdout.String(), "[OK] Signed out")
	_, err := h.persister.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.Equal(t, 0, h.run("", "logout"))
	assert.Contains(t, h.stdout.String(), "[INFO] Not signed in")
}

func TestApplyValidatesBeforeCallingBackend(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	code := h.run("", "leaves", "apply", "--type", "sick", "--start", "2026-10-21", "--end", "2026-10-20")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "--end: End date must not be before start date.")

	code = h.run("", "leaves", "apply", "--type", "VACATION", "--start", "2026-10-21", "--end", "2026-10-22")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "--type: Choose one of: ANNUAL SICK CASUAL.")
}

func TestApplySubmits(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CASUAL", body["leaveType"])
		writeJSON(w, http.StatusCreated, map[string]any{"id": 31, "status": "PENDING"})
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	code := h.run("", "leaves", "apply", "--type", "casual", "--start", "2026-10-21", "--end", "2026-10-21")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Leave request #31 submitted")
}

func TestCheckInToast(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attendance/check-in", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "date": "2026-10-19", "checkInTime": "09:29:41"})
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	require.Equal(t, 0, h.run("", "attendance", "check-in"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "[OK] Checked in at 09:29")
}

func TestPayslipSavedToDir(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payroll/7/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)
	dir := t.TempDir()

	code := h.run("", "payroll", "payslip", "7", "--dir", dir)
	require.Equal(t, 0, code, h.stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "payslip-7.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Contains(t, h.stdout.String(), "Payslip saved to")
}

func TestPayrollShowFormatsMoney(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 5, "employeeId": 12, "payPeriodMonth": 9, "payPeriodYear": 2026,
			"basicSalary": 5000, "netSalary": 4250.5, "status": "PAID",
		})
	})
	h.loginAs("admin@hcms.local", identity.RoleAdmin)

	require.Equal(t, 0, h.run("", "payroll", "show", "5"), h.stderr.String())
	out := h.stdout.String()
	assert.Contains(t, out, "Payroll #5")
	assert.Contains(t, out, "Period: 09/2026")
	assert.Contains(t, out, "Base Salary: USD 5,000.00")
	assert.Contains(t, out, "Net Salary: USD 4,250.50")
}

func TestRoutesCheck(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	require.Equal(t, 0, h.run("", "routes", "check", "/payroll"))
	assert.Contains(t, h.stdout.String(), "/payroll: redirect to /login")

	h.loginAs("emp@hcms.local", identity.RoleEmployee)
	require.Equal(t, 0, h.run("", "routes", "check", "payroll"))
	assert.Contains(t, h.stdout.String(), "/payroll: redirect to /dashboard")

	require.Equal(t, 0, h.run("", "routes", "check", "/leaves/apply"))
	assert.Contains(t, h.stdout.String(), "/leaves/apply: allowed")

	require.Equal(t, 0, h.run("", "routes", "check", "/nowhere"))
	assert.Contains(t, h.stdout.String(), "/nowhere: redirect to /dashboard")
	assert.Zero(t, h.calls.Load())
}

func TestNotificationsUnread(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "message": "a", "isRead": false},
			{"id": 2, "message": "b", "status": "READ"},
			{"id": 3, "message": "c", "read": false},
		})
	})
	h.loginAs("emp@hcms.local", identity.RoleEmployee)

	require.Equal(t, 0, h.run("", "notifications", "unread"), h.stderr.String())
	assert.Equal(t, "2\n", h.stdout.String())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hcmsctl.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
api:
  base_url: https://hcms.example.com/api/
  timeout: 3s
session:
  token_file: /tmp/hcms-token
output:
  colors: false
`), 0o600))
	t.Setenv("HCMSCTL_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "https://hcms.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/hcms-token", cfg.Session.TokenFile)
	assert.False(t, cfg.Output.Colors)
	assert.Equal(t, "USD", cfg.Output.Currency)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigRejectsRelativeURL(t *testing.T) {
	t.Setenv("HCMSCTL_API_BASE_URL", "localhost:8080")
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url must be an absolute URL")
}
