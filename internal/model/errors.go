package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a record or ledger entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateContent is returned when an artifact with the same hash was already issued.
	ErrDuplicateContent = errors.New("duplicate content")
	// ErrInvalidTransition is returned when a terminal record would be mutated.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStoreUnavailable is a transient content store failure.
	ErrStoreUnavailable = errors.New("content store unavailable")
	// ErrQuotaExceeded is a permanent content store refusal due to quota.
	ErrQuotaExceeded = errors.New("content store quota exceeded")
	// ErrStoreRejected is a permanent content store refusal of the request.
	ErrStoreRejected = errors.New("content store rejected request")

	// ErrLedgerUnavailable is a transient ledger failure.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrLedgerRejected is a permanent ledger refusal of the registration.
	ErrLedgerRejected = errors.New("ledger rejected registration")
	// ErrAlreadyRegistered is returned when the ledger already holds an entry for the hash.
	ErrAlreadyRegistered = errors.New("content hash already registered on ledger")
	// ErrTimedOut means confirmation did not arrive in time; the outcome is unknown.
	ErrTimedOut = errors.New("ledger confirmation timed out")
	// ErrTxNotFound means the node does not know the submitted transaction.
	ErrTxNotFound = errors.New("ledger transaction not found")

	// ErrIssuanceIncomplete means infrastructure retries were exhausted.
	ErrIssuanceIncomplete = errors.New("issuance incomplete")
)

// DuplicateContentError reports the record that already owns a content hash.
type DuplicateContentError struct {
	ContentHash string
	RecordID    string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("content %s already issued as record %s", e.ContentHash, e.RecordID)
}

func (e *DuplicateContentError) Unwrap() error {
	return ErrDuplicateContent
}

// IssuanceIncompleteError reports an issuance that stopped on a transient failure.
// RecordID is empty when the failure happened before a record was created.
type IssuanceIncompleteError struct {
	ContentHash string
	RecordID    string
	Cause       error
}

func (e *IssuanceIncompleteError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("issuance of %s incomplete, no record created: %v", e.ContentHash, e.Cause)
	}
	return fmt.Sprintf("issuance of %s incomplete, record %s pending: %v", e.ContentHash, e.RecordID, e.Cause)
}

func (e *IssuanceIncompleteError) Unwrap() []error {
	return []error{ErrIssuanceIncomplete, e.Cause}
}

// Retriable reports whether err is a transient infrastructure failure.
func Retriable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrLedgerUnavailable) ||
		errors.Is(err, ErrTimedOut)
}

// IssuanceFailedError reports an issuance the ledger refused; the record is failed.
type IssuanceFailedError struct {
	ContentHash string
	RecordID    string
	Reason      string
	Cause       error
}

func (e *IssuanceFailedError) Error() string {
	return fmt.Sprintf("issuance of %s failed, record %s: %s", e.ContentHash, e.RecordID, e.Reason)
}

func (e *IssuanceFailedError) Unwrap() error {
	return e.Cause
}
