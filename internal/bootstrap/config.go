// Package bootstrap builds the backends shared by the certichain binaries from flags.
package bootstrap

import (
	"errors"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/goodnatureofminers/certichain-backend/internal/service/issuance"
)

const (
	StoreIPFS   = "ipfs"
	StoreBadger = "badger"
	StoreGCS    = "gcs"

	LedgerEVM    = "evm"
	LedgerMemory = "memory"
)

// CommonConfig holds flags every binary accepts.
type CommonConfig struct {
	LogJSON     bool   `long:"log-json" env:"CERTICHAIN_LOG_JSON" description:"emit production JSON logs"`
	MetricsAddr string `long:"metrics-addr" env:"CERTICHAIN_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	RecordsDSN  string `long:"records-dsn" env:"CERTICHAIN_RECORDS_DSN" description:"record store DSN (sqlite://path or postgres://...)" default:"sqlite://certichain.db"`
}

// StoreConfig selects and configures the content store.
type StoreConfig struct {
	Backend        string        `long:"content-store" env:"CERTICHAIN_CONTENT_STORE" description:"content store backend" choice:"ipfs" choice:"badger" choice:"gcs" default:"badger"`
	IPFSURL        string        `long:"ipfs-url" env:"CERTICHAIN_IPFS_URL" description:"Kubo RPC endpoint" default:"http://127.0.0.1:5001"`
	IPFSToken      string        `long:"ipfs-token" env:"CERTICHAIN_IPFS_TOKEN" description:"bearer token for a pinning gateway"`
	IPFSTimeout    time.Duration `long:"ipfs-timeout" env:"CERTICHAIN_IPFS_TIMEOUT" description:"timeout of a single IPFS call" default:"60s"`
	BadgerDir      string        `long:"badger-dir" env:"CERTICHAIN_BADGER_DIR" description:"badger data directory, empty keeps content in memory" default:"data/content"`
	BadgerMaxBytes int64         `long:"badger-max-bytes" env:"CERTICHAIN_BADGER_MAX_BYTES" description:"content quota in bytes, 0 disables it"`
	GCSBucket      string        `long:"gcs-bucket" env:"CERTICHAIN_GCS_BUCKET" description:"Cloud Storage bucket"`
	GCSPrefix      string        `long:"gcs-prefix" env:"CERTICHAIN_GCS_PREFIX" description:"object name prefix" default:"certificates/"`
	GCSCredentials string        `long:"gcs-credentials" env:"CERTICHAIN_GCS_CREDENTIALS" description:"service account JSON file, empty uses application default credentials"`
}

// LedgerConfig selects and configures the ledger.
type LedgerConfig struct {
	Backend         string        `long:"ledger" env:"CERTICHAIN_LEDGER" description:"ledger backend; memory only works with an in-process worker" choice:"evm" choice:"memory" default:"memory"`
	RPCURL          string        `long:"ledger-rpc-url" env:"CERTICHAIN_LEDGER_RPC_URL" description:"EVM JSON-RPC endpoint" default:"http://127.0.0.1:8545"`
	WSURL           string        `long:"ledger-ws-url" env:"CERTICHAIN_LEDGER_WS_URL" description:"EVM websocket endpoint for new head notifications"`
	PrivateKey      string        `long:"ledger-private-key" env:"CERTICHAIN_LEDGER_PRIVATE_KEY" description:"hex key of the relaying account"`
	ContractAddress string        `long:"ledger-contract" env:"CERTICHAIN_LEDGER_CONTRACT" description:"registry contract address"`
	Confirmations   uint64        `long:"ledger-confirmations" env:"CERTICHAIN_LEDGER_CONFIRMATIONS" description:"blocks required before a registration counts as confirmed" default:"2"`
	PollInterval    time.Duration `long:"ledger-poll-interval" env:"CERTICHAIN_LEDGER_POLL_INTERVAL" description:"receipt polling interval" default:"3s"`
	FromBlock       uint64        `long:"ledger-from-block" env:"CERTICHAIN_LEDGER_FROM_BLOCK" description:"registry deployment block"`
	GasLimit        uint64        `long:"ledger-gas-limit" env:"CERTICHAIN_LEDGER_GAS_LIMIT" description:"fixed gas limit, 0 estimates"`
	RPS             int           `long:"ledger-rps" env:"CERTICHAIN_LEDGER_RPS" description:"max ledger RPC calls per second" default:"20"`
	MemoryDelay     time.Duration `long:"ledger-memory-delay" env:"CERTICHAIN_LEDGER_MEMORY_DELAY" description:"confirmation delay of the memory ledger" default:"2s"`
}

// JournalConfig configures the ClickHouse audit journal.
type JournalConfig struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CERTICHAIN_CLICKHOUSE_DSN" description:"ClickHouse DSN, empty disables the audit journal"`
	FlushSize     int           `long:"journal-flush-size" env:"CERTICHAIN_JOURNAL_FLUSH_SIZE" description:"events per insert" default:"500"`
	FlushInterval time.Duration `long:"journal-flush-interval" env:"CERTICHAIN_JOURNAL_FLUSH_INTERVAL" description:"max delay before buffered events are written" default:"2s"`
	RPS           int           `long:"journal-rps" env:"CERTICHAIN_JOURNAL_RPS" description:"max inserts per second" default:"5"`
}

// ReconcilerConfig mirrors issuance.Config as flags.
type ReconcilerConfig struct {
	ContentAttempts     int           `long:"content-attempts" env:"CERTICHAIN_CONTENT_ATTEMPTS" description:"content store attempts per upload" default:"4"`
	SubmitAttempts      int           `long:"submit-attempts" env:"CERTICHAIN_SUBMIT_ATTEMPTS" description:"ledger submit attempts per round" default:"3"`
	TaskAttempts        int           `long:"task-attempts" env:"CERTICHAIN_TASK_ATTEMPTS" description:"background rounds before an unregistered certificate fails" default:"20"`
	InitialBackoff      time.Duration `long:"initial-backoff" env:"CERTICHAIN_INITIAL_BACKOFF" description:"first retry delay" default:"500ms"`
	MaxBackoff          time.Duration `long:"max-backoff" env:"CERTICHAIN_MAX_BACKOFF" description:"retry delay cap within a request" default:"10s"`
	TaskInitialBackoff  time.Duration `long:"task-initial-backoff" env:"CERTICHAIN_TASK_INITIAL_BACKOFF" description:"first delay between background rounds" default:"30s"`
	TaskMaxBackoff      time.Duration `long:"task-max-backoff" env:"CERTICHAIN_TASK_MAX_BACKOFF" description:"delay cap between background rounds" default:"30m"`
	ConfirmationTimeout time.Duration `long:"confirmation-timeout" env:"CERTICHAIN_CONFIRMATION_TIMEOUT" description:"how long a request waits for ledger confirmation" default:"2m"`
	TaskLease           time.Duration `long:"task-lease" env:"CERTICHAIN_TASK_LEASE" description:"how long a claimed task stays hidden from other workers" default:"5m"`
	PollInterval        time.Duration `long:"worker-poll-interval" env:"CERTICHAIN_WORKER_POLL_INTERVAL" description:"idle delay between worker rounds" default:"15s"`
	WorkerCount         int           `long:"worker-count" env:"CERTICHAIN_WORKER_COUNT" description:"tasks resumed concurrently" default:"8"`
	BatchSize           int           `long:"worker-batch-size" env:"CERTICHAIN_WORKER_BATCH_SIZE" description:"tasks claimed per round" default:"100"`
}

// Issuance converts flags into the reconciler configuration.
func (c ReconcilerConfig) Issuance() issuance.Config {
	return issuance.Config{
		ContentRetry: issuance.RetryPolicy{
			MaxAttempts: c.ContentAttempts, InitialBackoff: c.InitialBackoff, MaxBackoff: c.MaxBackoff, Multiplier: 2,
		},
		SubmitRetry: issuance.RetryPolicy{
			MaxAttempts: c.SubmitAttempts, InitialBackoff: c.InitialBackoff, MaxBackoff: c.MaxBackoff, Multiplier: 2,
		},
		TaskRetry: issuance.RetryPolicy{
			MaxAttempts: c.TaskAttempts, InitialBackoff: c.TaskInitialBackoff, MaxBackoff: c.TaskMaxBackoff, Multiplier: 2,
		},
		ConfirmationTimeout: c.ConfirmationTimeout,
		TaskLease:           c.TaskLease,
		PollInterval:        c.PollInterval,
		WorkerCount:         c.WorkerCount,
		BatchSize:           c.BatchSize,
	}
}

// ErrHelp is returned by ParseFlags when usage was printed.
var ErrHelp = errors.New("help requested")

// ParseFlags fills cfg from arguments and environment.
func ParseFlags(cfg interface{}) error {
	if _, err := flags.ParseArgs(cfg, os.Args[1:]); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return ErrHelp
		}
		return err
	}
	return nil
}
