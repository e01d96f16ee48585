package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// EventsByContentHash returns the audit trail of one artifact in occurrence order.
func (r *Repository) EventsByContentHash(ctx context.Context, contentHash string, limit int) ([]model.IssuanceEvent, error) {
	start := time.Now()
	var (
		err    error
		events []model.IssuanceEvent
	)
	defer func() {
		r.metrics.Observe("events_by_content_hash", len(events), err, start)
	}()

	const query = `
SELECT
	content_hash,
	record_id,
	stage,
	outcome,
	detail,
	occurred_at
FROM issuance_events
WHERE content_hash = ?
ORDER BY occurred_at, inserted_at
LIMIT ?`

	rows, err := r.conn.Query(ctx, query, contentHash, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			event model.IssuanceEvent
			stage string
		)
		if err = rows.Scan(
			&event.ContentHash,
			&event.RecordID,
			&stage,
			&event.Outcome,
			&event.Detail,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Stage = model.Stage(stage)
		event.OccurredAt = event.OccurredAt.UTC()
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
