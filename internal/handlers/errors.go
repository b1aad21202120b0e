package handlers

import (
	"errors"
	"net/http"

	"github.com/otcheredev/hospital-visitor-access/internal/response"
	"github.com/otcheredev/hospital-visitor-access/internal/services"
	"github.com/rs/zerolog/log"
)

// writeServiceError maps service errors to status codes. Store failures are
// logged and reported without internal detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, services.ErrMalformedPayload):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "Scanned code could not be read", response.CodeMalformedPayload, err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "Invalid request", response.CodeInvalidInput, err.Error())
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, "Guest pass not found")
	case errors.Is(err, services.ErrScanConflict):
		response.WriteError(w, http.StatusConflict, "Guest pass changed during the scan, please scan again", response.CodeScanConflict)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(action)
		response.WriteError(w, http.StatusInternalServerError, action, response.CodeStoreFailure)
	}
}
