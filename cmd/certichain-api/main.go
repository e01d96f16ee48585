package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goodnatureofminers/certichain-backend/internal/bootstrap"
	"github.com/goodnatureofminers/certichain-backend/internal/metrics"
	"github.com/goodnatureofminers/certichain-backend/internal/service/issuance"
	"github.com/goodnatureofminers/certichain-backend/internal/service/verification"
	"github.com/goodnatureofminers/certichain-backend/internal/transport"
)

type config struct {
	Addr           string        `long:"addr" env:"CERTICHAIN_API_ADDR" description:"HTTP listen address" default:":8000"`
	MaxUploadBytes int64         `long:"max-upload-bytes" env:"CERTICHAIN_MAX_UPLOAD_BYTES" description:"largest accepted artifact" default:"20971520"`
	IssuerHeader   string        `long:"issuer-header" env:"CERTICHAIN_ISSUER_HEADER" description:"header carrying the authenticated issuer address" default:"X-Issuer-Identity"`
	AllowedOrigins []string      `long:"allowed-origin" env:"CERTICHAIN_ALLOWED_ORIGINS" env-delim:"," description:"CORS origin, repeatable; none allows any"`
	RunWorker      bool          `long:"run-worker" env:"CERTICHAIN_RUN_WORKER" description:"resume pending issuances in this process"`
	ShutdownGrace  time.Duration `long:"shutdown-grace" env:"CERTICHAIN_SHUTDOWN_GRACE" description:"time in-flight ledger work gets on shutdown" default:"30s"`

	Common     bootstrap.CommonConfig     `group:"common"`
	Store      bootstrap.StoreConfig      `group:"content store"`
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

	if cfg.Ledger.Backend == bootstrap.LedgerMemory && !cfg.RunWorker {
		logger.Warn("memory ledger without --run-worker: pending issuances are only resumed by this process")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("certichain api failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	bootstrap.StartMetricsServer(ctx, cfg.Common.MetricsAddr, logger)

	records, err := bootstrap.OpenRecords(ctx, cfg.Common.RecordsDSN, logger)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer records.Close()

	store, closeStore, err := bootstrap.NewContentStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("init content store: %w", err)
	}
	defer closeStore()

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

	reconciler, err := issuance.NewReconciler(records, store, ledger.Client, audit.Journal, metrics.NewReconciler(), cfg.Reconciler.Issuance(), logger)
	if err != nil {
		return err
	}
	engine, err := verification.NewEngine(records, ledger.Client, audit.Journal, metrics.NewVerification(), logger)
	if err != nil {
		return err
	}

	var events transport.EventReader
	if audit.Events != nil {
		events = audit.Events
	}
	handler, err := transport.NewHandler(reconciler, engine, records, events, records, transport.Config{
		MaxUploadBytes: cfg.MaxUploadBytes,
		IssuerHeader:   cfg.IssuerHeader,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
	if err != nil {
		return err
	}

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Reconciler.ConfirmationTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.RunWorker {
		worker, err := issuance.NewWorker(reconciler, ledger.Heads, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}

		graceCtx, cancelGrace := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancelGrace()
		if err := reconciler.Shutdown(graceCtx); err != nil {
			logger.Warn("in-flight ledger work left to the worker", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Addr))
		if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	return g.Wait()
}
