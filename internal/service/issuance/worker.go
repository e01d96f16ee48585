package issuance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/clock"
	"github.com/goodnatureofminers/certichain-backend/internal/model"
	"github.com/goodnatureofminers/certichain-backend/pkg/workerpool"
)

// Worker resumes pending issuance tasks until the context is canceled.
type Worker struct {
	reconciler  *Reconciler
	logger      *zap.Logger
	wait        func(context.Context, time.Duration, <-chan struct{}) error
	blockSignal <-chan struct{}
}

// NewWorker builds a Worker. blockSignal may be nil; when set, every new ledger head
// triggers an early round.
func NewWorker(reconciler *Reconciler, blockSignal <-chan struct{}, logger *zap.Logger) (*Worker, error) {
	if reconciler == nil {
		return nil, errors.New("worker reconciler is required")
	}
	return &Worker{
		reconciler:  reconciler,
		logger:      logger.Named("worker"),
		wait:        clock.WaitOrSignal,
		blockSignal: blockSignal,
	}, nil
}

// Run claims and resumes due tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	poll := w.reconciler.cfg.PollInterval
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", poll))
			if sleepErr := w.wait(ctx, poll, nil); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (w *Worker) run(ctx context.Context) error {
	r := w.reconciler
	started := time.Now()
	tasks, err := r.records.ClaimDueTasks(ctx, r.now(), r.cfg.TaskLease, r.cfg.BatchSize)
	r.metrics.ObserveTaskBatch(err, len(tasks))
	if err != nil {
		w.logger.Error("claim due tasks failed", zap.Error(err))
		return err
	}

	if len(tasks) == 0 {
		w.logger.Debug("no due tasks; sleeping", zap.Duration("sleep", r.cfg.PollInterval))
		return w.wait(ctx, r.cfg.PollInterval, w.blockSignal)
	}

	w.logger.Info("resuming tasks", zap.Int("tasks", len(tasks)), zap.Duration("claim", time.Since(started)))
	return workerpool.Process(ctx, r.cfg.WorkerCount, tasks, func(ctx context.Context, task model.IssuanceTask) error {
		started := time.Now()
		err := r.Resume(ctx, task)
		r.metrics.ObserveTask(err, started)
		return err
	})
}
