package model

import (
	"encoding/json"
	"time"
)

// Reason explains why a verification did not succeed.
type Reason string

var (
	ReasonNotFound       Reason = "not_found"
	ReasonLedgerMismatch Reason = "ledger_mismatch"
)

// VerificationResult is one of NotFoundResult, LedgerMismatchResult or VerifiedResult.
// The unexported marker keeps the set closed.
type VerificationResult interface {
	Verified() bool
	verificationResult()
}

// NotFoundResult means no certificate record matches the lookup key.
type NotFoundResult struct {
	LookupKey string
}

// LedgerMismatchResult means the record exists but the ledger does not back it.
type LedgerMismatchResult struct {
	LookupKey string
	RecordID  string
	Detail    string
}

// VerifiedResult carries the merged certificate view.
type VerifiedResult struct {
	Certificate VerifiedCertificate
}

// VerifiedCertificate merges ledger-sourced fields with database-owned details.
type VerifiedCertificate struct {
	ID                string         `json:"id"`
	ContentHash       string         `json:"content_hash"`
	ContentLocator    Locator        `json:"content_locator"`
	MetadataLocator   Locator        `json:"metadata_locator"`
	IssuerIdentity    string         `json:"issuer_identity"`
	IssuedAt          time.Time      `json:"issued_at"`
	SubjectReference  string         `json:"subject_reference"`
	SubjectDigest     string         `json:"subject_digest"`
	Course            CourseMetadata `json:"course"`
	LedgerTxReference TxReference    `json:"ledger_tx_reference,omitempty"`
	Status            Status         `json:"status"`
}

func (NotFoundResult) Verified() bool       { return false }
func (LedgerMismatchResult) Verified() bool { return false }
func (VerifiedResult) Verified() bool       { return true }

func (NotFoundResult) verificationResult()       {}
func (LedgerMismatchResult) verificationResult() {}
func (VerifiedResult) verificationResult()       {}

// Reason returns ReasonNotFound.
func (NotFoundResult) Reason() Reason { return ReasonNotFound }

// Reason returns ReasonLedgerMismatch.
func (LedgerMismatchResult) Reason() Reason { return ReasonLedgerMismatch }

type verificationPayload struct {
	Verified    bool                 `json:"verified"`
	Reason      Reason               `json:"reason,omitempty"`
	Detail      string               `json:"detail,omitempty"`
	Certificate *VerifiedCertificate `json:"certificate,omitempty"`
}

func (r NotFoundResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(verificationPayload{Reason: ReasonNotFound})
}

func (r LedgerMismatchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(verificationPayload{Reason: ReasonLedgerMismatch, Detail: r.Detail})
}

func (r VerifiedResult) MarshalJSON() ([]byte, error) {
	cert := r.Certificate
	return json.Marshal(verificationPayload{Verified: true, Certificate: &cert})
}
