package model

import "time"

// Stage names a step of the issuance protocol recorded in the audit journal.
type Stage string

var (
	StageReceived          Stage = "received"
	StageDuplicateRejected Stage = "duplicate_rejected"
	StageContentStored     Stage = "content_stored"
	StageRecordCreated     Stage = "record_created"
	StageLedgerSubmitted   Stage = "ledger_submitted"
	StageLedgerTimedOut    Stage = "ledger_timed_out"
	StageVerified          Stage = "verified"
	StageFailed            Stage = "failed"
	StageVerification      Stage = "verification"
)

// IssuanceEvent is an append-only audit row.
type IssuanceEvent struct {
	ContentHash string
	RecordID    string
	Stage       Stage
	Outcome     string
	Detail      string
	OccurredAt  time.Time
}
