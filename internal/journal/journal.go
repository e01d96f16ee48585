// Package journal appends issuance audit events without blocking the issuance path.
package journal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
	"github.com/goodnatureofminers/certichain-backend/pkg/batcher"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	EventWriter interface {
		InsertEvents(ctx context.Context, events []model.IssuanceEvent) error
	}
)

// Config tunes batching of audit writes.
type Config struct {
	FlushSize     int
	FlushInterval time.Duration
	RPS           int
}

// BatchJournal buffers events and writes them in batches.
type BatchJournal struct {
	batcher *batcher.Batcher[model.IssuanceEvent]
	now     func() time.Time
	logger  *zap.Logger
}

func NewBatchJournal(writer EventWriter, cfg Config, logger *zap.Logger) *BatchJournal {
	logger = logger.Named("journal")
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	return &BatchJournal{
		batcher: batcher.New(logger, writer.InsertEvents, cfg.FlushSize, cfg.FlushInterval, cfg.RPS),
		now:     time.Now,
		logger:  logger,
	}
}

func (j *BatchJournal) Start(ctx context.Context) {
	j.batcher.Start(ctx)
}

// Stop flushes buffered events.
func (j *BatchJournal) Stop() {
	j.batcher.Stop()
}

// Record queues an event. Journal failures never fail the caller's operation.
func (j *BatchJournal) Record(ctx context.Context, event model.IssuanceEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = j.now().UTC()
	}
	if err := j.batcher.Add(ctx, event); err != nil {
		j.logger.Warn("audit event dropped",
			zap.String("content_hash", event.ContentHash),
			zap.String("stage", string(event.Stage)),
			zap.Error(err),
		)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, model.IssuanceEvent) {}
