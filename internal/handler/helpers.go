package handler

import (
	"errors"
	"net/http"

	"brandcanvas/internal/domain"
	"brandcanvas/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var tooLarge *domain.PayloadTooLargeError

	switch {
	case errors.As(err, &tooLarge):
		// Size-ceiling errors carry diagnostics so the client can tell
		// whether retrying will help.
		httputil.RespondErrorWithExtras(w, tooLarge.StatusCode(), tooLarge.Error(), tooLarge.Extras())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// maxMetadataBytes bounds request bodies that never carry node payloads.
const maxMetadataBytes = 1 << 20

// maxPresetBytes bounds preset publishes, which may carry a small
// thumbnail data URI but never full node blobs.
const maxPresetBytes = 5 << 20
