package transport

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		maxBytes   *http.MaxBytesError
		failed     *model.IssuanceFailedError
		incomplete *model.IssuanceIncompleteError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateContent):
		return http.StatusConflict
	case errors.As(err, &failed), errors.Is(err, model.ErrStoreRejected):
		return http.StatusUnprocessableEntity
	case errors.As(err, &incomplete):
		return http.StatusAccepted
	case errors.Is(err, model.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case model.Retriable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var (
		dup        *model.DuplicateContentError
		failed     *model.IssuanceFailedError
		incomplete *model.IssuanceIncompleteError
	)
	switch {
	case errors.As(err, &dup):
		body.RecordID, body.ContentHash = dup.RecordID, dup.ContentHash
	case errors.As(err, &failed):
		body.RecordID, body.ContentHash = failed.RecordID, failed.ContentHash
	case errors.As(err, &incomplete):
		body.RecordID, body.ContentHash = incomplete.RecordID, incomplete.ContentHash
		if incomplete.RecordID == "" {
			// nothing durable exists, the caller has to retry the upload
			status = http.StatusServiceUnavailable
		}
	}

	if status >= http.StatusInternalServerError && status != http.StatusInsufficientStorage && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed", zap.Error(err))
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}
