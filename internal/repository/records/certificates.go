package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// Create inserts rec, assigning its ID. The unique index on content_hash rejects a second
// record for the same artifact with a DuplicateContentError naming the existing record.
func (r *Repository) Create(ctx context.Context, rec *model.CertificateRecord) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("create", err, started)
	}()

	row, err := r.prepareCreate(rec)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.createError(ctx, rec.ContentHash, err)
	}
	return nil
}

// CreateWithTask inserts rec together with its issuance task. The task starts leased by the
// caller for lease so background workers do not pick it up while the caller drives it.
func (r *Repository) CreateWithTask(ctx context.Context, rec *model.CertificateRecord, lease time.Duration) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("create_with_task", err, started)
	}()

	row, err := r.prepareCreate(rec)
	if err != nil {
		return err
	}
	task := taskRow{
		ContentHash:   row.ContentHash,
		RecordID:      row.ID,
		NextAttemptAt: row.IssuedAt.Add(lease),
		LeaseUntil:    row.IssuedAt.Add(lease),
		CreatedAt:     row.IssuedAt,
		UpdatedAt:     row.IssuedAt,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return r.createError(ctx, rec.ContentHash, err)
	}
	return nil
}

func (r *Repository) prepareCreate(rec *model.CertificateRecord) (certificateRow, error) {
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	if rec.Status != model.StatusPending {
		return certificateRow{}, fmt.Errorf("%w: new record must be pending, got %s", model.ErrInvalidTransition, rec.Status)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if rec.IssuedAt.IsZero() {
		rec.IssuedAt = now
	}
	rec.UpdatedAt = rec.IssuedAt
	return toCertificateRow(rec), nil
}

func (r *Repository) createError(ctx context.Context, contentHash string, err error) error {
	if !isUniqueViolation(err) {
		return fmt.Errorf("create record %s: %w", contentHash, err)
	}
	dup := &model.DuplicateContentError{ContentHash: contentHash}
	var existing certificateRow
	if findErr := r.db.WithContext(ctx).Select("id").Where("content_hash = ?", contentHash).Take(&existing).Error; findErr == nil {
		dup.RecordID = existing.ID
	} else {
		r.logger.Warn("duplicate record owner not resolved", zap.String("content_hash", contentHash), zap.Error(findErr))
	}
	return dup
}

func (r *Repository) FindByHash(ctx context.Context, contentHash string) (rec *model.CertificateRecord, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("find_by_hash", err, started)
	}()
	return r.findOne(ctx, "content_hash = ?", contentHash)
}

func (r *Repository) FindByID(ctx context.Context, id string) (rec *model.CertificateRecord, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("find_by_id", err, started)
	}()
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) FindByTxReference(ctx context.Context, ref model.TxReference) (rec *model.CertificateRecord, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("find_by_tx_reference", err, started)
	}()
	return r.findOne(ctx, "ledger_tx_reference = ?", string(ref))
}

func (r *Repository) findOne(ctx context.Context, query string, arg string) (*model.CertificateRecord, error) {
	var row certificateRow
	err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %s: %w", arg, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find record %s: %w", arg, err)
	}
	return row.toModel()
}

// UpdateStatus moves a pending record to a terminal status. The update is conditional on
// the record still being pending, so a terminal record is never rewritten.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status model.Status, txRef model.TxReference, reason string) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("update_status", err, started)
	}()
	return updateStatus(ctx, r.db, id, status, txRef, reason, r.now().UTC())
}

func updateStatus(ctx context.Context, db *gorm.DB, id string, status model.Status, txRef model.TxReference, reason string, now time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", model.ErrInvalidTransition, status)
	}
	if status == model.StatusVerified && txRef == "" {
		return fmt.Errorf("%w: verified record %s requires a transaction reference", model.ErrInvalidTransition, id)
	}

	updates := map[string]interface{}{
		"status":         string(status),
		"failure_reason": reason,
		"updated_at":     now,
	}
	if txRef != "" {
		updates["ledger_tx_reference"] = string(txRef)
	}

	res := db.WithContext(ctx).Model(&certificateRow{}).
		Where("id = ? AND status = ?", id, string(model.StatusPending)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update record %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current certificateRow
	err := db.WithContext(ctx).Select("status").Where("id = ?", id).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("record %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read record %s status: %w", id, err)
	}
	return fmt.Errorf("%w: record %s is %s", model.ErrInvalidTransition, id, current.Status)
}
