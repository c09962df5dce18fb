package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcms-console/hcms-console/internal/gateway"
)

func TestRespondErrorMapsBackendErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"unauthorized", &gateway.APIError{Status: http.StatusUnauthorized}, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", &gateway.APIError{Status: http.StatusForbidden, Message: "nope"}, http.StatusForbidden, "Forbidden"},
		{"wrapped not found", fmt.Errorf("notifications: %w", &gateway.APIError{Status: http.StatusNotFound}), http.StatusNotFound, "Not Found"},
		{"conflict", &gateway.APIError{Status: http.StatusConflict}, http.StatusConflict, "Conflict"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "Backend Timeout"},
		{"other", fmt.Errorf("boom"), http.StatusBadGateway, "Backend Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)
			var body ProblemDetail
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "about:blank", body.Type)
			assert.Equal(t, tc.title, body.Title)
			assert.Equal(t, tc.status, body.Status)
		})
	}
}

func TestJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]int{"unread": 3})
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"unread":3}`, rec.Body.String())
}
