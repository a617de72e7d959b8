package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

func writeValidationError(w http.ResponseWriter, details map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, accountsdk.ErrorResponse{
		Error:   accountsdk.ErrorCodeValidation,
		Message: "Validation failed",
		Details: details,
	})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeValidation, err.Error())
}

func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, accountsdk.ErrorCodeUnauthorized, "Unauthorized")
}

// writeServiceError maps service sentinels onto status codes. Anything
// unrecognised is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeInvalidID, "Invalid id")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, accountsdk.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, service.ErrUnauthorized):
		writeUnauthorized(w)
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, accountsdk.ErrorCodeNotFound, notFoundMsg)
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, accountsdk.ErrorCodeConflict, "Email is already registered")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, accountsdk.ErrorCodeServerError, "Internal server error")
	}
}
