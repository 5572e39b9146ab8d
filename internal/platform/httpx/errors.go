// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// RespondError maps backend and validation errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var statusErr *backend.StatusError
	switch {
	case shared.FieldErrors(err) != nil:
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", backend.Message(err))
	case errors.Is(err, backend.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", backend.Message(err))
	case errors.Is(err, backend.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", backend.Message(err))
	case errors.As(err, &statusErr):
		Problem(w, http.StatusBadGateway, "Upstream Error", statusErr.Message())
	case errors.Is(err, backend.ErrTransport), errors.Is(err, backend.ErrMalformed), errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusBadGateway, "Upstream Unavailable", backend.Message(err))
	case errors.Is(err, shared.ErrBusy):
		Problem(w, http.StatusConflict, "Busy", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
