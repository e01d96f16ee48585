// Package verification answers whether a certificate is backed by both the database and the ledger.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// Engine resolves lookup keys to verification results. It never writes records.
type Engine struct {
	records RecordFinder
	ledger  LedgerReader
	journal Journal
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine builds an Engine with dependencies.
func NewEngine(records RecordFinder, ledger LedgerReader, journal Journal, metrics Metrics, logger *zap.Logger) (*Engine, error) {
	if metrics == nil {
		return nil, errors.New("verification metrics is required")
	}
	return &Engine{
		records: records,
		ledger:  ledger,
		journal: journal,
		metrics: metrics,
		logger:  logger.Named("verification"),
		now:     time.Now,
	}, nil
}

// Verify resolves lookupKey, a content hash or a ledger transaction reference, and checks the
// record against the ledger entry for its hash. Infrastructure failures are returned as errors.
func (e *Engine) Verify(ctx context.Context, lookupKey string) (result model.VerificationResult, err error) {
	started := time.Now()
	defer func() {
		e.metrics.ObserveVerify(resultOutcome(result), err, started)
	}()

	key := model.NormalizeHash(lookupKey)
	if _, perr := model.ParseDigest(key); perr != nil {
		return model.NotFoundResult{LookupKey: lookupKey}, nil
	}

	rec, err := e.resolve(ctx, key)
	if errors.Is(err, model.ErrNotFound) {
		return model.NotFoundResult{LookupKey: key}, nil
	}
	if err != nil {
		return nil, err
	}

	logger := e.logger.With(zap.String("content_hash", rec.ContentHash), zap.String("record_id", rec.ID))
	entry, err := e.ledger.Lookup(ctx, rec.ContentHash)
	switch {
	case errors.Is(err, model.ErrNotFound):
		result = model.LedgerMismatchResult{LookupKey: key, RecordID: rec.ID, Detail: "no ledger entry for content hash"}
	case err != nil:
		return nil, fmt.Errorf("ledger lookup %s: %w", rec.ContentHash, err)
	default:
		if detail := mismatch(entry, rec); detail != "" {
			result = model.LedgerMismatchResult{LookupKey: key, RecordID: rec.ID, Detail: detail}
		} else {
			result = model.VerifiedResult{Certificate: merge(rec, entry)}
		}
	}

	if mm, ok := result.(model.LedgerMismatchResult); ok {
		logger.Warn("record not backed by ledger", zap.String("detail", mm.Detail))
	}
	e.journal.Record(ctx, model.IssuanceEvent{
		ContentHash: rec.ContentHash,
		RecordID:    rec.ID,
		Stage:       model.StageVerification,
		Outcome:     resultOutcome(result),
		Detail:      key,
		OccurredAt:  e.now().UTC(),
	})
	return result, nil
}

func (e *Engine) resolve(ctx context.Context, key string) (*model.CertificateRecord, error) {
	rec, err := e.records.FindByHash(ctx, key)
	if !errors.Is(err, model.ErrNotFound) {
		return rec, err
	}
	return e.records.FindByTxReference(ctx, model.TxReference(key))
}

func mismatch(entry model.LedgerEntry, rec *model.CertificateRecord) string {
	switch {
	case model.NormalizeHash(entry.ContentHash) != rec.ContentHash:
		return "content hash differs from ledger entry"
	case !model.SameIdentity(entry.IssuerIdentity, rec.IssuerIdentity):
		return "issuer differs from ledger entry"
	case model.NormalizeHash(entry.SubjectDigest) != model.SubjectDigest(rec.SubjectReference):
		return "subject digest differs from ledger entry"
	default:
		return ""
	}
}

// merge prefers ledger fields over database fields for anything the ledger records.
func merge(rec *model.CertificateRecord, entry model.LedgerEntry) model.VerifiedCertificate {
	cert := model.VerifiedCertificate{
		ID:                rec.ID,
		ContentHash:       rec.ContentHash,
		ContentLocator:    rec.ContentLocator,
		MetadataLocator:   entry.MetadataLocator,
		IssuerIdentity:    entry.IssuerIdentity,
		IssuedAt:          entry.RegisteredAt,
		SubjectReference:  rec.SubjectReference,
		SubjectDigest:     model.NormalizeHash(entry.SubjectDigest),
		Course:            rec.CourseMetadata,
		LedgerTxReference: entry.TxReference,
		Status:            rec.Status,
	}
	if cert.MetadataLocator == "" {
		cert.MetadataLocator = rec.MetadataLocator
	}
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = rec.IssuedAt
	}
	if cert.LedgerTxReference == "" {
		cert.LedgerTxReference = rec.LedgerTxReference
	}
	return cert
}

func resultOutcome(result model.VerificationResult) string {
	switch result.(type) {
	case model.VerifiedResult:
		return "verified"
	case model.LedgerMismatchResult:
		return "ledger_mismatch"
	case model.NotFoundResult:
		return "not_found"
	default:
		return "error"
	}
}
