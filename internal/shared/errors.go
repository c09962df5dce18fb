package shared

import (
	"context"
	"errors"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/identity"
)

// CSRF verification failures. Both are answered with 403.
var (
	ErrCSRFTokenMissing  = errors.New("csrf: token missing")
	ErrCSRFTokenMismatch = errors.New("csrf: token does not match session")
)

// UserSafeMessage turns an error into text that can be shown on a screen.
// Backend messages pass through; transport failures are summarized.
func UserSafeMessage(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gateway.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, identity.ErrMalformedToken), errors.Is(err, identity.ErrTokenExpired):
		return "The server returned an unusable session token."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return gateway.Message(err, fallback)
	}
	return fallback
}
