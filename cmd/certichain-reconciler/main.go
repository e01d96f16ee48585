package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/bootstrap"
	"github.com/goodnatureofminers/certichain-backend/internal/metrics"
	"github.com/goodnatureofminers/certichain-backend/internal/service/issuance"
)

type config struct {
	Common     bootstrap.CommonConfig     `group:"common"`
	Ledger     bootstrap.LedgerConfig     `group:"ledger"`
	Journal    bootstrap.JournalConfig    `group:"journal"`
	Reconciler bootstrap.ReconcilerConfig `group:"reconciler"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.ParseFlags(&cfg); err != nil {
		if errors.Is(err, bootstrap.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger, err := bootstrap.NewLogger(cfg.Common.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.Ledger.Backend == bootstrap.LedgerMemory {
		logger.Fatal("the reconciler needs a shared ledger, use --ledger=evm")
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("certichain reconciler failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	bootstrap.StartMetricsServer(ctx, cfg.Common.MetricsAddr, logger)

	records, err := bootstrap.OpenRecords(ctx, cfg.Common.RecordsDSN, logger)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer records.Close()

	ledger, err := bootstrap.NewLedger(ctx, cfg.Ledger, logger)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer ledger.Close()

	audit, err := bootstrap.NewJournal(ctx, cfg.Journal, logger)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer audit.Close()

	// resuming tasks never touches the content store
	reconciler, err := issuance.NewReconciler(records, nil, ledger.Client, audit.Journal, metrics.NewReconciler(), cfg.Reconciler.Issuance(), logger)
	if err != nil {
		return err
	}
	worker, err := issuance.NewWorker(reconciler, ledger.Heads, logger)
	if err != nil {
		return err
	}
	logger.Info("reconciler started", zap.Int("workers", cfg.Reconciler.WorkerCount))
	return worker.Run(ctx)
}
