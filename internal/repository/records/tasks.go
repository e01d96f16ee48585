package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// ClaimDueTasks leases up to limit tasks whose next attempt is due and whose lease has
// expired. Each claim is a conditional update on the lease version, so concurrent workers
// in different processes never claim the same task.
func (r *Repository) ClaimDueTasks(ctx context.Context, now time.Time, lease time.Duration, limit int) (tasks []model.IssuanceTask, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("claim_due_tasks", err, started)
	}()
	now = now.UTC()

	var candidates []taskRow
	err = r.db.WithContext(ctx).
		Where("next_attempt_at <= ? AND lease_until <= ?", now, now).
		Order("next_attempt_at").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("select due tasks: %w", err)
	}

	leaseUntil := now.Add(lease)
	for _, candidate := range candidates {
		res := r.db.WithContext(ctx).Model(&taskRow{}).
			Where("content_hash = ? AND lease_version = ?", candidate.ContentHash, candidate.LeaseVersion).
			Updates(map[string]interface{}{
				"lease_until":   leaseUntil,
				"lease_version": candidate.LeaseVersion + 1,
				"updated_at":    now,
			})
		if res.Error != nil {
			return tasks, fmt.Errorf("lease task %s: %w", candidate.ContentHash, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		candidate.LeaseUntil = leaseUntil
		candidate.LeaseVersion++
		tasks = append(tasks, candidate.toModel())
	}
	return tasks, nil
}

// FindTask returns the pending issuance task for contentHash.
func (r *Repository) FindTask(ctx context.Context, contentHash string) (task *model.IssuanceTask, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("find_task", err, started)
	}()

	var row taskRow
	err = r.db.WithContext(ctx).Where("content_hash = ?", contentHash).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task %s: %w", contentHash, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", contentHash, err)
	}
	out := row.toModel()
	return &out, nil
}

// CountTasks returns the number of outstanding issuance tasks.
func (r *Repository) CountTasks(ctx context.Context) (count int64, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("count_tasks", err, started)
	}()

	if err = r.db.WithContext(ctx).Model(&taskRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// RecordSubmission stores the handle of the transaction submitted for contentHash.
func (r *Repository) RecordSubmission(ctx context.Context, contentHash string, handle model.TxHandle) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("record_submission", err, started)
	}()
	return r.updateTask(ctx, contentHash, map[string]interface{}{
		"tx_handle":  string(handle),
		"updated_at": r.now().UTC(),
	})
}

// ClearSubmission forgets the submitted transaction, e.g. after the node dropped it.
func (r *Repository) ClearSubmission(ctx context.Context, contentHash string) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("clear_submission", err, started)
	}()
	return r.updateTask(ctx, contentHash, map[string]interface{}{
		"tx_handle":  "",
		"updated_at": r.now().UTC(),
	})
}

// RescheduleTask releases the lease, counts the attempt and schedules the next one.
func (r *Repository) RescheduleTask(ctx context.Context, contentHash string, nextAttempt time.Time, lastError string) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("reschedule_task", err, started)
	}()
	return r.updateTask(ctx, contentHash, map[string]interface{}{
		"attempts":        gorm.Expr("attempts + 1"),
		"next_attempt_at": nextAttempt.UTC(),
		"lease_until":     time.Time{}.UTC(),
		"lease_version":   gorm.Expr("lease_version + 1"),
		"last_error":      lastError,
		"updated_at":      r.now().UTC(),
	})
}

// CompleteTask moves the record to a terminal status and deletes its task in one transaction.
func (r *Repository) CompleteTask(ctx context.Context, recordID, contentHash string, status model.Status, txRef model.TxReference, reason string) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("complete_task", err, started)
	}()

	now := r.now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStatus(ctx, tx, recordID, status, txRef, reason, now); err != nil {
			return err
		}
		if err := tx.Where("content_hash = ?", contentHash).Delete(&taskRow{}).Error; err != nil {
			return fmt.Errorf("delete task %s: %w", contentHash, err)
		}
		return nil
	})
}

func (r *Repository) updateTask(ctx context.Context, contentHash string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&taskRow{}).Where("content_hash = ?", contentHash).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update task %s: %w", contentHash, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", contentHash, model.ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task whose record is already terminal.
func (r *Repository) DeleteTask(ctx context.Context, contentHash string) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("delete_task", err, started)
	}()

	if err = r.db.WithContext(ctx).Where("content_hash = ?", contentHash).Delete(&taskRow{}).Error; err != nil {
		return fmt.Errorf("delete task %s: %w", contentHash, err)
	}
	return nil
}
