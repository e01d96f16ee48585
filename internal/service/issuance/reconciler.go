// Package issuance drives certificates from upload to a terminal ledger-backed status.
package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

const metadataContentType = "application/json"

// Reconciler issues certificates and resolves their pending ledger registrations.
type Reconciler struct {
	records RecordStore
	content ContentStore
	ledger  LedgerClient
	journal Journal
	metrics Metrics
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	inflight sync.WaitGroup
	// detached ledger work survives request cancellation but stops on shutdown
	shutdownCtx context.Context
	shutdown    context.CancelFunc
}

// NewReconciler builds a Reconciler with dependencies.
func NewReconciler(
	records RecordStore,
	content ContentStore,
	ledger LedgerClient,
	journal Journal,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
) (*Reconciler, error) {
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("reconciler config: %w", err)
	}
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	return &Reconciler{
		records:     records,
		content:     content,
		ledger:      ledger,
		journal:     journal,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger.Named("reconciler"),
		now:         time.Now,
		shutdownCtx: shutdownCtx,
		shutdown:    shutdown,
	}, nil
}

// Issue stores the artifact and its metadata, creates a pending record and drives the
// ledger registration. The registration continues in the background when ctx is canceled
// or the ledger is slow; the returned IssuanceIncompleteError then carries the record id.
func (r *Reconciler) Issue(ctx context.Context, req model.IssueRequest) (*model.CertificateRecord, error) {
	started := time.Now()
	rec, err := r.issue(ctx, req)
	r.metrics.ObserveIssue(issueOutcome(err), started)
	return rec, err
}

func (r *Reconciler) issue(ctx context.Context, req model.IssueRequest) (*model.CertificateRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash := model.ContentDigest(req.Artifact)
	logger := r.logger.With(zap.String("content_hash", hash))
	r.record(ctx, hash, "", model.StageReceived, "ok", "")

	existing, err := r.records.FindByHash(ctx, hash)
	switch {
	case err == nil:
		r.record(ctx, hash, existing.ID, model.StageDuplicateRejected, "rejected", "")
		return nil, &model.DuplicateContentError{ContentHash: hash, RecordID: existing.ID}
	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("dedup check %s: %w", hash, err)
	}

	contentLocator, err := r.put(ctx, hash, "artifact", req.Artifact, req.ContentType)
	if err != nil {
		return nil, err
	}

	issuedAt := r.now().UTC()
	subjectDigest := model.SubjectDigest(req.SubjectReference)
	doc, err := json.Marshal(model.MetadataDocument{
		ContentHash:    hash,
		ContentLocator: contentLocator,
		ContentType:    req.ContentType,
		IssuerIdentity: req.IssuerIdentity,
		SubjectDigest:  subjectDigest,
		Course:         req.CourseMetadata,
		IssuedAt:       issuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode metadata document: %w", err)
	}
	metadataLocator, err := r.put(ctx, hash, "metadata", doc, metadataContentType)
	if err != nil {
		return nil, err
	}
	r.record(ctx, hash, "", model.StageContentStored, "ok", string(contentLocator))

	rec := &model.CertificateRecord{
		ContentHash:      hash,
		ContentLocator:   contentLocator,
		MetadataLocator:  metadataLocator,
		ContentType:      req.ContentType,
		IssuerIdentity:   req.IssuerIdentity,
		SubjectReference: req.SubjectReference,
		CourseMetadata:   req.CourseMetadata,
		Status:           model.StatusPending,
		IssuedAt:         issuedAt,
	}
	if err := r.records.CreateWithTask(ctx, rec, r.cfg.TaskLease); err != nil {
		var dup *model.DuplicateContentError
		if errors.As(err, &dup) {
			r.record(ctx, hash, dup.RecordID, model.StageDuplicateRejected, "rejected", "concurrent issuance")
		}
		return nil, err
	}
	r.record(ctx, hash, rec.ID, model.StageRecordCreated, "ok", "")
	logger.Info("record created", zap.String("record_id", rec.ID))

	task := model.IssuanceTask{ContentHash: hash, RecordID: rec.ID}
	done := make(chan outcome, 1)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		detached, cancel := r.detach(ctx)
		defer cancel()
		done <- r.advance(detached, task, rec, false)
	}()

	select {
	case res := <-done:
		return r.issueResult(rec, res)
	case <-ctx.Done():
		logger.Info("request canceled, ledger registration continues in background", zap.String("record_id", rec.ID))
		return nil, &model.IssuanceIncompleteError{ContentHash: hash, RecordID: rec.ID, Cause: ctx.Err()}
	}
}

func (r *Reconciler) issueResult(rec *model.CertificateRecord, res outcome) (*model.CertificateRecord, error) {
	switch res.status {
	case model.StatusVerified:
		rec.Status = model.StatusVerified
		rec.LedgerTxReference = res.txRef
		return rec, nil
	case model.StatusFailed:
		return nil, &model.IssuanceFailedError{ContentHash: rec.ContentHash, RecordID: rec.ID, Reason: res.reason, Cause: res.err}
	default:
		return nil, &model.IssuanceIncompleteError{ContentHash: rec.ContentHash, RecordID: rec.ID, Cause: res.err}
	}
}

// put uploads data, retrying only transient store failures.
func (r *Reconciler) put(ctx context.Context, hash, kind string, data []byte, contentType string) (model.Locator, error) {
	var locator model.Locator
	op := func() error {
		var err error
		locator, err = r.content.Put(ctx, data, contentType)
		if err != nil && !errors.Is(err, model.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.metrics.ObserveRetry("content_" + kind)
		r.logger.Warn("content store put failed, retrying",
			zap.String("content_hash", hash),
			zap.String("kind", kind),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, r.cfg.ContentRetry.backOff(ctx), notify)
	switch {
	case err == nil:
		return locator, nil
	case errors.Is(err, model.ErrStoreUnavailable), ctx.Err() != nil:
		r.record(ctx, hash, "", model.StageContentStored, "incomplete", err.Error())
		return "", &model.IssuanceIncompleteError{ContentHash: hash, Cause: err}
	default:
		r.record(ctx, hash, "", model.StageContentStored, "rejected", err.Error())
		return "", fmt.Errorf("store %s of %s: %w", kind, hash, err)
	}
}

func (r *Reconciler) detach(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(r.shutdownCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Shutdown waits for detached ledger work. When ctx expires first the work is canceled;
// the affected tasks stay pending and are resumed by a worker later.
func (r *Reconciler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.shutdown()
		return nil
	case <-ctx.Done():
		r.shutdown()
		<-done
		return ctx.Err()
	}
}

func (r *Reconciler) record(ctx context.Context, hash, recordID string, stage model.Stage, outcome, detail string) {
	r.journal.Record(ctx, model.IssuanceEvent{
		ContentHash: hash,
		RecordID:    recordID,
		Stage:       stage,
		Outcome:     outcome,
		Detail:      detail,
		OccurredAt:  r.now().UTC(),
	})
}

func validateRequest(req model.IssueRequest) error {
	if len(req.Artifact) == 0 {
		return fmt.Errorf("%w: artifact is empty", model.ErrInvalidInput)
	}
	if strings.TrimSpace(req.SubjectReference) == "" {
		return fmt.Errorf("%w: subject reference is required", model.ErrInvalidInput)
	}
	if !common.IsHexAddress(req.IssuerIdentity) {
		return fmt.Errorf("%w: issuer identity %q is not an address", model.ErrInvalidInput, req.IssuerIdentity)
	}
	return nil
}

func issueOutcome(err error) string {
	var (
		incomplete *model.IssuanceIncompleteError
		failed     *model.IssuanceFailedError
	)
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, model.ErrDuplicateContent):
		return "duplicate"
	case errors.As(err, &failed):
		return "failed"
	case errors.As(err, &incomplete):
		return "incomplete"
	case errors.Is(err, model.ErrQuotaExceeded), errors.Is(err, model.ErrStoreRejected):
		return "rejected"
	default:
		return "error"
	}
}
