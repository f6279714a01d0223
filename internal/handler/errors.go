package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"workmarket/internal/domain"
	"workmarket/internal/httputil"
)

// respondDomainError maps domain errors to HTTP status codes.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidQuery):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// callerID extracts the authenticated caller's id, established by the
// identity middleware from the upstream auth layer's header.
func callerID(r *http.Request) string {
	return httputil.GetUserID(r)
}
