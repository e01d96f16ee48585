package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// InsertEvents appends audit events to issuance_events.
func (r *Repository) InsertEvents(ctx context.Context, events []model.IssuanceEvent) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_events", len(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	const query = `
INSERT INTO issuance_events (
	content_hash,
	record_id,
	stage,
	outcome,
	detail,
	occurred_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare events batch: %w", err)
	}

	for _, event := range events {
		if err = batch.Append(
			event.ContentHash,
			event.RecordID,
			string(event.Stage),
			event.Outcome,
			event.Detail,
			event.OccurredAt.UTC(),
		); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}
