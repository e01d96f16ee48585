package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// outcome is the state a task reached in one ledger attempt.
type outcome struct {
	status model.Status
	txRef  model.TxReference
	reason string
	err    error
}

// Resume continues a pending task claimed by a worker. The ledger is consulted before any
// submission so a registration that landed earlier is never submitted twice.
func (r *Reconciler) Resume(ctx context.Context, task model.IssuanceTask) error {
	logger := r.logger.With(zap.String("content_hash", task.ContentHash), zap.String("record_id", task.RecordID))

	rec, err := r.records.FindByID(ctx, task.RecordID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		logger.Error("task has no record, dropping it")
		return r.records.DeleteTask(ctx, task.ContentHash)
	case err != nil:
		return fmt.Errorf("load record %s: %w", task.RecordID, err)
	}
	if rec.Status.Terminal() {
		logger.Info("record already terminal, dropping task", zap.String("status", string(rec.Status)))
		return r.records.DeleteTask(ctx, task.ContentHash)
	}

	res := r.advance(ctx, task, rec, true)
	logger.Debug("task attempt finished", zap.String("status", string(res.status)), zap.Error(res.err))
	return nil
}

func (r *Reconciler) advance(ctx context.Context, task model.IssuanceTask, rec *model.CertificateRecord, lookupFirst bool) outcome {
	switch {
	case task.TxHandle != "":
		res, dropped := r.confirm(ctx, task, rec, task.TxHandle)
		if !dropped {
			return res
		}
		task.TxHandle = ""
	case lookupFirst:
		if res, ok := r.fromLedger(ctx, task, rec); ok {
			return res
		}
		// the lookup ran after every earlier submission and no handle is outstanding
		if task.Attempts >= r.cfg.TaskRetry.MaxAttempts {
			return r.complete(ctx, task, model.StatusFailed, "", exhaustedReason(task))
		}
	}
	return r.submit(ctx, task, rec)
}

func exhaustedReason(task model.IssuanceTask) string {
	reason := fmt.Sprintf("ledger registration not achieved after %d attempts", task.Attempts)
	if task.LastError != "" {
		reason += ": " + task.LastError
	}
	return reason
}

func (r *Reconciler) submit(ctx context.Context, task model.IssuanceTask, rec *model.CertificateRecord) outcome {
	logger := r.logger.With(zap.String("content_hash", task.ContentHash))
	subjectDigest := model.SubjectDigest(rec.SubjectReference)

	var handle model.TxHandle
	op := func() error {
		var err error
		handle, err = r.ledger.Submit(ctx, rec.ContentHash, rec.MetadataLocator, subjectDigest, rec.IssuerIdentity)
		if err != nil && !errors.Is(err, model.ErrLedgerUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.metrics.ObserveRetry("ledger_submit")
		logger.Warn("ledger submit failed, retrying", zap.Duration("wait", wait), zap.Error(err))
	}

	err := backoff.RetryNotify(op, r.cfg.SubmitRetry.backOff(ctx), notify)
	switch {
	case errors.Is(err, model.ErrAlreadyRegistered):
		if res, ok := r.fromLedger(ctx, task, rec); ok {
			return res
		}
		return r.postpone(ctx, task, err)
	case errors.Is(err, model.ErrLedgerRejected):
		return r.complete(ctx, task, model.StatusFailed, "", err.Error())
	case err != nil:
		// an unavailable node may still have accepted the transaction
		return r.postpone(ctx, task, err)
	}

	if err := r.records.RecordSubmission(ctx, task.ContentHash, handle); err != nil {
		logger.Warn("record submission failed", zap.String("tx_handle", string(handle)), zap.Error(err))
	}
	r.record(ctx, task.ContentHash, task.RecordID, model.StageLedgerSubmitted, "ok", string(handle))

	res, dropped := r.confirm(ctx, task, rec, handle)
	if dropped {
		return r.postpone(ctx, task, model.ErrTxNotFound)
	}
	return res
}

// confirm waits for handle. dropped is true when the node lost the transaction and the
// ledger holds no entry for the hash.
func (r *Reconciler) confirm(ctx context.Context, task model.IssuanceTask, rec *model.CertificateRecord, handle model.TxHandle) (res outcome, dropped bool) {
	ref, err := r.ledger.AwaitConfirmation(ctx, handle, r.cfg.ConfirmationTimeout)
	switch {
	case err == nil:
		return r.complete(ctx, task, model.StatusVerified, ref, ""), false
	case errors.Is(err, model.ErrLedgerRejected):
		// a reverted transaction may still lose to an earlier registration of ours
		if res, ok := r.fromLedger(ctx, task, rec); ok {
			return res, false
		}
		return r.complete(ctx, task, model.StatusFailed, "", err.Error()), false
	case errors.Is(err, model.ErrTxNotFound):
		r.logger.Warn("ledger dropped transaction",
			zap.String("content_hash", task.ContentHash),
			zap.String("tx_handle", string(handle)),
		)
		if cerr := r.records.ClearSubmission(ctx, task.ContentHash); cerr != nil {
			return r.postpone(ctx, task, cerr), false
		}
		if res, ok := r.fromLedger(ctx, task, rec); ok {
			return res, false
		}
		return outcome{}, true
	case errors.Is(err, model.ErrTimedOut):
		r.record(ctx, task.ContentHash, task.RecordID, model.StageLedgerTimedOut, "pending", string(handle))
		return r.postpone(ctx, task, err), false
	default:
		return r.postpone(ctx, task, err), false
	}
}

// fromLedger resolves the task from an existing ledger entry. ok is false when the ledger
// confirms the hash is not registered.
func (r *Reconciler) fromLedger(ctx context.Context, task model.IssuanceTask, rec *model.CertificateRecord) (res outcome, ok bool) {
	entry, err := r.ledger.Lookup(ctx, task.ContentHash)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return outcome{}, false
	case err != nil:
		return r.postpone(ctx, task, err), true
	}

	if detail := entryMismatch(entry, rec); detail != "" {
		return r.complete(ctx, task, model.StatusFailed, "", detail), true
	}
	if entry.TxReference == "" {
		return r.postpone(ctx, task, errors.New("ledger entry has no transaction reference yet")), true
	}
	return r.complete(ctx, task, model.StatusVerified, entry.TxReference, ""), true
}

func (r *Reconciler) complete(ctx context.Context, task model.IssuanceTask, status model.Status, txRef model.TxReference, reason string) outcome {
	logger := r.logger.With(zap.String("content_hash", task.ContentHash), zap.String("record_id", task.RecordID))
	ctx = context.WithoutCancel(ctx)

	err := r.records.CompleteTask(ctx, task.RecordID, task.ContentHash, status, txRef, reason)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrInvalidTransition):
		logger.Error("record already terminal", zap.String("wanted", string(status)), zap.Error(err))
		current, ferr := r.records.FindByID(ctx, task.RecordID)
		if ferr != nil {
			return outcome{status: model.StatusPending, err: ferr}
		}
		if derr := r.records.DeleteTask(ctx, task.ContentHash); derr != nil {
			logger.Warn("delete task failed", zap.Error(derr))
		}
		return outcome{status: current.Status, txRef: current.LedgerTxReference, reason: current.FailureReason}
	default:
		// the task keeps its lease and is picked up again once it expires
		logger.Error("complete task failed", zap.String("status", string(status)), zap.Error(err))
		return outcome{status: model.StatusPending, err: err}
	}

	r.metrics.ObserveTransition(status)
	if status == model.StatusVerified {
		r.record(ctx, task.ContentHash, task.RecordID, model.StageVerified, "ok", string(txRef))
		logger.Info("certificate verified", zap.String("tx_reference", string(txRef)))
		return outcome{status: status, txRef: txRef}
	}
	r.record(ctx, task.ContentHash, task.RecordID, model.StageFailed, "failed", reason)
	logger.Warn("certificate failed", zap.String("reason", reason))
	return outcome{status: status, reason: reason, err: model.ErrLedgerRejected}
}

// postpone keeps the record pending and schedules the next attempt.
func (r *Reconciler) postpone(ctx context.Context, task model.IssuanceTask, cause error) outcome {
	attempt := task.Attempts + 1
	next := r.now().Add(r.cfg.TaskRetry.Delay(task.Attempts))
	if err := r.records.RescheduleTask(context.WithoutCancel(ctx), task.ContentHash, next, cause.Error()); err != nil {
		r.logger.Error("reschedule task failed", zap.String("content_hash", task.ContentHash), zap.Error(err))
	}
	r.metrics.ObserveRetry("ledger")
	r.logger.Warn("ledger attempt postponed",
		zap.String("content_hash", task.ContentHash),
		zap.Int("attempt", attempt),
		zap.Time("next_attempt_at", next),
		zap.Error(cause),
	)
	return outcome{status: model.StatusPending, err: cause}
}

func entryMismatch(entry model.LedgerEntry, rec *model.CertificateRecord) string {
	switch {
	case model.NormalizeHash(entry.ContentHash) != rec.ContentHash:
		return "ledger entry content hash differs"
	case !model.SameIdentity(entry.IssuerIdentity, rec.IssuerIdentity):
		return "ledger entry issuer differs"
	case model.NormalizeHash(entry.SubjectDigest) != model.SubjectDigest(rec.SubjectReference):
		return "ledger entry subject digest differs"
	default:
		return ""
	}
}
