package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/contentstore"
	"github.com/goodnatureofminers/certichain-backend/internal/journal"
	"github.com/goodnatureofminers/certichain-backend/internal/ledger"
	"github.com/goodnatureofminers/certichain-backend/internal/ledger/evm"
	"github.com/goodnatureofminers/certichain-backend/internal/ledger/memory"
	"github.com/goodnatureofminers/certichain-backend/internal/metrics"
	"github.com/goodnatureofminers/certichain-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/certichain-backend/internal/repository/records"
	"github.com/goodnatureofminers/certichain-backend/internal/service/issuance"
)

// NewLogger builds the development logger, or the production JSON logger when asked.
func NewLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Closer releases a backend.
type Closer func() error

// OpenRecords opens and migrates the record store.
func OpenRecords(ctx context.Context, dsn string, logger *zap.Logger) (*records.Repository, error) {
	db, dialect, err := records.Open(dsn)
	if err != nil {
		return nil, err
	}
	repo := records.NewRepository(db, metrics.NewRecordRepository(dialect), logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	logger.Info("record store ready", zap.String("dialect", dialect))
	return repo, nil
}

// NewContentStore builds the configured content store wrapped with metrics.
func NewContentStore(ctx context.Context, cfg StoreConfig, logger *zap.Logger) (*contentstore.ObservedStore, Closer, error) {
	var (
		store  contentstore.Store
		closer Closer = func() error { return nil }
	)
	switch cfg.Backend {
	case StoreIPFS:
		ipfs, err := contentstore.NewIPFSStore(contentstore.IPFSConfig{
			APIURL:  cfg.IPFSURL,
			Token:   cfg.IPFSToken,
			Timeout: cfg.IPFSTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		store = ipfs
	case StoreBadger:
		badger, err := contentstore.NewBadgerStore(contentstore.BadgerConfig{
			Dir:      cfg.BadgerDir,
			MaxBytes: cfg.BadgerMaxBytes,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		store, closer = badger, badger.Close
	case StoreGCS:
		gcs, err := contentstore.NewGCSStore(ctx, contentstore.GCSConfig{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCSPrefix,
			CredentialsFile: cfg.GCSCredentials,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		store, closer = gcs, gcs.Close
	default:
		return nil, nil, fmt.Errorf("unknown content store %q", cfg.Backend)
	}
	logger.Info("content store ready", zap.String("backend", cfg.Backend))
	return contentstore.NewObservedStore(store, metrics.NewContentStore(cfg.Backend)), closer, nil
}

// Ledger is the configured ledger client plus an optional new head signal.
type Ledger struct {
	Client *ledger.ObservedClient
	// Heads is nil unless a websocket endpoint is configured.
	Heads <-chan struct{}
	Close Closer
}

// NewLedger builds the configured ledger client wrapped with metrics.
func NewLedger(ctx context.Context, cfg LedgerConfig, logger *zap.Logger) (*Ledger, error) {
	switch cfg.Backend {
	case LedgerMemory:
		logger.Warn("using in-memory ledger, registrations are lost on restart")
		client := memory.New(memory.Config{ConfirmationDelay: cfg.MemoryDelay}, logger)
		return &Ledger{
			Client: ledger.NewObservedClient(client, metrics.NewLedgerClient(cfg.Backend)),
			Close:  func() error { return nil },
		}, nil
	case LedgerEVM:
		return newEVMLedger(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ledger %q", cfg.Backend)
	}
}

func newEVMLedger(ctx context.Context, cfg LedgerConfig, logger *zap.Logger) (*Ledger, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("ledger contract address %q is invalid", cfg.ContractAddress)
	}
	if cfg.PrivateKey == "" {
		return nil, errors.New("ledger private key is required")
	}
	client, eth, err := evm.Dial(ctx, cfg.RPCURL, cfg.PrivateKey, evm.Config{
		ContractAddress: common.HexToAddress(cfg.ContractAddress),
		Confirmations:   cfg.Confirmations,
		PollInterval:    cfg.PollInterval,
		FromBlock:       cfg.FromBlock,
		GasLimit:        cfg.GasLimit,
		RPS:             cfg.RPS,
	}, logger)
	if err != nil {
		return nil, err
	}
	out := &Ledger{
		Client: ledger.NewObservedClient(client, metrics.NewLedgerClient(cfg.Backend)),
		Close: func() error {
			eth.Close()
			return nil
		},
	}
	if cfg.WSURL == "" {
		return out, nil
	}

	ws, err := ethclient.DialContext(ctx, cfg.WSURL)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("dial ledger websocket: %w", err)
	}
	out.Heads = evm.WatchHeads(ctx, ws, logger)
	out.Close = func() error {
		ws.Close()
		eth.Close()
		return nil
	}
	logger.Info("watching ledger heads", zap.String("ws_url", cfg.WSURL))
	return out, nil
}

// Journal is the audit journal plus the reader serving recorded events.
type Journal struct {
	Journal issuance.Journal
	// Events is nil when no ClickHouse DSN is configured.
	Events *clickhouse.Repository
	Close  Closer
}

// NewJournal starts the ClickHouse journal, or a no-op journal when no DSN is set.
func NewJournal(ctx context.Context, cfg JournalConfig, logger *zap.Logger) (*Journal, error) {
	if cfg.ClickhouseDSN == "" {
		logger.Info("audit journal disabled")
		return &Journal{Journal: journal.Nop{}, Close: func() error { return nil }}, nil
	}
	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, fmt.Errorf("init clickhouse repository: %w", err)
	}
	j := startBatchJournal(ctx, repo, cfg, logger)
	return &Journal{
		Journal: j,
		Events:  repo,
		Close: func() error {
			j.Stop()
			return repo.Close()
		},
	}, nil
}

// startBatchJournal keeps the batcher running after ctx is done. Detached ledger work
// still records its terminal events during shutdown, so only Close stops the journal.
func startBatchJournal(ctx context.Context, writer journal.EventWriter, cfg JournalConfig, logger *zap.Logger) *journal.BatchJournal {
	j := journal.NewBatchJournal(writer, journal.Config{
		FlushSize:     cfg.FlushSize,
		FlushInterval: cfg.FlushInterval,
		RPS:           cfg.RPS,
	}, logger)
	j.Start(context.WithoutCancel(ctx))
	return j
}

// StartMetricsServer serves /metrics on addr until ctx is done.
func StartMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
