package httpx

import (
	"errors"
	"net/http"

	"github.com/onlinestore/onlinestore/internal/shared"
)

// RespondError maps shared sentinel errors to generic HTTP responses.
// Internal detail never reaches the client; callers log it first.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusConflict, "Conflict")
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "Bad Request")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Unauthorized")
	default:
		Error(w, http.StatusInternalServerError, "Internal Error")
	}
}
