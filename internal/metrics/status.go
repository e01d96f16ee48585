package metrics

import (
	"errors"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

func ledgerStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrTimedOut):
		return "timed_out"
	case errors.Is(err, model.ErrLedgerRejected):
		return "rejected"
	default:
		return "error"
	}
}

func recordStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrDuplicateContent):
		return "duplicate"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}
