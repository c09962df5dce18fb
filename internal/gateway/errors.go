package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors matched by APIError.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("backend unavailable")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrUpstream:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// errorBody matches the backend's error envelope. errors is either a
// field → message object or a Spring list of field errors.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldError struct {
	Field          string `json:"field"`
	Message        string `json:"message"`
	DefaultMessage string `json:"defaultMessage"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}
	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		apiErr.Message = strings.TrimSpace(parsed.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(parsed.Error)
		}
		apiErr.Fields = decodeFields(parsed.Errors)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func decodeFields(raw json.RawMessage) map[string]string {
	var byField map[string]string
	if json.Unmarshal(raw, &byField) == nil && len(byField) > 0 {
		return byField
	}
	var list []fieldError
	if json.Unmarshal(raw, &list) != nil {
		return nil
	}
	fields := make(map[string]string, len(list))
	for _, fe := range list {
		msg := fe.DefaultMessage
		if msg == "" {
			msg = fe.Message
		}
		if fe.Field != "" && msg != "" {
			fields[fe.Field] = msg
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Message returns the backend supplied message for err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldErrors returns per-field validation messages carried by err.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
