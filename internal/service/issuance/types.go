package issuance

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	ContentStore interface {
		Put(ctx context.Context, data []byte, contentType string) (model.Locator, error)
	}
	LedgerClient interface {
		Submit(ctx context.Context, contentHash string, metadataLocator model.Locator, subjectDigest, issuer string) (model.TxHandle, error)
		AwaitConfirmation(ctx context.Context, handle model.TxHandle, timeout time.Duration) (model.TxReference, error)
		Lookup(ctx context.Context, contentHash string) (model.LedgerEntry, error)
	}
	RecordStore interface {
		FindByHash(ctx context.Context, contentHash string) (*model.CertificateRecord, error)
		FindByID(ctx context.Context, id string) (*model.CertificateRecord, error)
		CreateWithTask(ctx context.Context, rec *model.CertificateRecord, lease time.Duration) error
		ClaimDueTasks(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]model.IssuanceTask, error)
		RecordSubmission(ctx context.Context, contentHash string, handle model.TxHandle) error
		ClearSubmission(ctx context.Context, contentHash string) error
		RescheduleTask(ctx context.Context, contentHash string, nextAttempt time.Time, lastError string) error
		CompleteTask(ctx context.Context, recordID, contentHash string, status model.Status, txRef model.TxReference, reason string) error
		DeleteTask(ctx context.Context, contentHash string) error
	}
	Journal interface {
		Record(ctx context.Context, event model.IssuanceEvent)
	}
	Metrics interface {
		ObserveIssue(outcome string, started time.Time)
		ObserveTransition(status model.Status)
		ObserveRetry(step string)
		ObserveTaskBatch(err error, tasks int)
		ObserveTask(err error, started time.Time)
	}
)
