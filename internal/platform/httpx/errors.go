package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/shared"
)

// RespondError maps backend errors to RFC7807 responses for the console's
// JSON endpoints.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err, ""))
	case errors.Is(err, gateway.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", gateway.Message(err, ""))
	case errors.Is(err, gateway.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", gateway.Message(err, ""))
	case errors.Is(err, gateway.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", gateway.Message(err, ""))
	case errors.Is(err, gateway.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", gateway.Message(err, ""))
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Backend Timeout", "")
	default:
		Problem(w, http.StatusBadGateway, "Backend Error", "")
	}
}
