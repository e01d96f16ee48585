// Package model defines domain models for certificate issuance and verification.
package model

import "time"

// Status describes the lifecycle state of a certificate record.
type Status string

var (
	// StatusPending marks a record whose ledger registration is not confirmed yet.
	StatusPending Status = "pending"
	// StatusVerified marks a record confirmed on the ledger.
	StatusVerified Status = "verified"
	// StatusFailed marks a record whose registration was rejected.
	StatusFailed Status = "failed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusFailed
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusFailed:
		return true
	default:
		return false
	}
}

// Locator is a content identifier returned by the content store.
type Locator string

// TxHandle identifies a submitted, possibly unconfirmed, ledger transaction.
type TxHandle string

// TxReference identifies a confirmed ledger transaction.
type TxReference string

// CourseMetadata holds database-owned certificate details shown in verification results.
type CourseMetadata struct {
	StudentName    string            `json:"student_name"`
	CourseName     string            `json:"course_name"`
	Grade          string            `json:"grade,omitempty"`
	CompletionDate string            `json:"completion_date,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// CertificateRecord is the durable database view of an issued certificate.
type CertificateRecord struct {
	ID                string         `json:"id"`
	ContentHash       string         `json:"content_hash"`
	ContentLocator    Locator        `json:"content_locator"`
	MetadataLocator   Locator        `json:"metadata_locator"`
	ContentType       string         `json:"content_type"`
	IssuerIdentity    string         `json:"issuer_identity"`
	SubjectReference  string         `json:"subject_reference"`
	CourseMetadata    CourseMetadata `json:"course_metadata"`
	Status            Status         `json:"status"`
	LedgerTxReference TxReference    `json:"ledger_tx_reference,omitempty"`
	FailureReason     string         `json:"failure_reason,omitempty"`
	IssuedAt          time.Time      `json:"issued_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// LedgerEntry is a registration read back from the ledger.
type LedgerEntry struct {
	ContentHash     string
	MetadataLocator Locator
	SubjectDigest   string
	IssuerIdentity  string
	RegisteredAt    time.Time
	// TxReference is empty when the ledger cannot attribute the entry to a transaction.
	TxReference TxReference
}

// IssuanceTask is the durable background work item for a pending record, keyed by content hash.
type IssuanceTask struct {
	ContentHash   string
	RecordID      string
	TxHandle      TxHandle
	Attempts      int
	NextAttemptAt time.Time
	LeaseUntil    time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IssueRequest carries the inputs of an issuance, already authenticated by the caller.
type IssueRequest struct {
	Artifact         []byte
	ContentType      string
	SubjectReference string
	CourseMetadata   CourseMetadata
	IssuerIdentity   string
}

// MetadataDocument is the JSON document pinned next to the artifact.
type MetadataDocument struct {
	ContentHash    string         `json:"content_hash"`
	ContentLocator Locator        `json:"content_locator"`
	ContentType    string         `json:"content_type"`
	IssuerIdentity string         `json:"issuer_identity"`
	SubjectDigest  string         `json:"subject_digest"`
	Course         CourseMetadata `json:"course"`
	IssuedAt       time.Time      `json:"issued_at"`
}
