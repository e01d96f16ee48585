// Package memory implements an in-process append-only ledger for development and tests.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/clock"
	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// Operation names a ledger call that can be scripted to fail.
type Operation string

const (
	OpSubmit            Operation = "submit"
	OpAwaitConfirmation Operation = "await_confirmation"
	OpLookup            Operation = "lookup"
)

// Config tunes the simulated chain.
type Config struct {
	// ConfirmationDelay is the time between submission and confirmation.
	ConfirmationDelay time.Duration
	// AllowedIssuers restricts registrations to the listed issuers; empty allows any issuer.
	AllowedIssuers []string
}

type pendingTx struct {
	entry       model.LedgerEntry
	confirmedAt time.Time
}

// Ledger is an append-only registry held in memory.
type Ledger struct {
	cfg    Config
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger

	mu      sync.Mutex
	nonce   uint64
	txs     map[model.TxHandle]*pendingTx
	entries map[string]model.TxHandle
	scripts map[Operation][]error
}

func New(cfg Config, logger *zap.Logger) *Ledger {
	return &Ledger{
		cfg:     cfg,
		now:     time.Now,
		sleep:   clock.SleepWithContext,
		logger:  logger.Named("memory_ledger"),
		txs:     make(map[model.TxHandle]*pendingTx),
		entries: make(map[string]model.TxHandle),
		scripts: make(map[Operation][]error),
	}
}

// Script queues errors returned by the next calls of op, one per call, before normal behavior resumes.
func (l *Ledger) Script(op Operation, errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scripts[op] = append(l.scripts[op], errs...)
}

// Drop forgets a submitted transaction that has not been confirmed yet, as a node does when it evicts it from the mempool.
func (l *Ledger) Drop(handle model.TxHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[handle]
	if !ok || !l.now().Before(tx.confirmedAt) {
		return
	}
	delete(l.txs, handle)
	delete(l.entries, tx.entry.ContentHash)
}

// Entries returns the number of registrations, confirmed or not.
func (l *Ledger) Entries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) scripted(op Operation) error {
	queue := l.scripts[op]
	if len(queue) == 0 {
		return nil
	}
	l.scripts[op] = queue[1:]
	return queue[0]
}

func (l *Ledger) Submit(_ context.Context, contentHash string, metadataLocator model.Locator, subjectDigest, issuer string) (model.TxHandle, error) {
	hash, err := model.ParseDigest(contentHash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrLedgerRejected, err)
	}
	digest, err := model.ParseDigest(subjectDigest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrLedgerRejected, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.scripted(OpSubmit); err != nil {
		return "", err
	}
	if !l.allowed(issuer) {
		return "", fmt.Errorf("%w: issuer %s not authorized", model.ErrLedgerRejected, issuer)
	}
	if _, ok := l.entries[hash]; ok {
		return "", fmt.Errorf("submit %s: %w", hash, model.ErrAlreadyRegistered)
	}

	l.nonce++
	handle := txHash(hash, l.nonce)
	now := l.now()
	l.txs[handle] = &pendingTx{
		entry: model.LedgerEntry{
			ContentHash:     hash,
			MetadataLocator: metadataLocator,
			SubjectDigest:   digest,
			IssuerIdentity:  issuer,
			RegisteredAt:    now.Add(l.cfg.ConfirmationDelay).UTC(),
			TxReference:     model.TxReference(handle),
		},
		confirmedAt: now.Add(l.cfg.ConfirmationDelay),
	}
	l.entries[hash] = handle

	l.logger.Debug("registration submitted", zap.String("content_hash", hash), zap.String("tx", string(handle)))
	return handle, nil
}

func (l *Ledger) AwaitConfirmation(ctx context.Context, handle model.TxHandle, timeout time.Duration) (model.TxReference, error) {
	l.mu.Lock()
	if err := l.scripted(OpAwaitConfirmation); err != nil {
		l.mu.Unlock()
		return "", err
	}
	tx, ok := l.txs[handle]
	l.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("tx %s: %w", handle, model.ErrTxNotFound)
	}

	remaining := tx.confirmedAt.Sub(l.now())
	if remaining <= 0 {
		return model.TxReference(handle), nil
	}
	if remaining > timeout {
		if err := l.sleep(ctx, timeout); err != nil {
			return "", fmt.Errorf("%w: tx %s: %v", model.ErrTimedOut, handle, err)
		}
		return "", fmt.Errorf("tx %s: %w", handle, model.ErrTimedOut)
	}
	if err := l.sleep(ctx, remaining); err != nil {
		return "", fmt.Errorf("%w: tx %s: %v", model.ErrTimedOut, handle, err)
	}
	return model.TxReference(handle), nil
}

func (l *Ledger) Lookup(_ context.Context, contentHash string) (model.LedgerEntry, error) {
	hash, err := model.ParseDigest(contentHash)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.scripted(OpLookup); err != nil {
		return model.LedgerEntry{}, err
	}
	handle, ok := l.entries[hash]
	if !ok {
		return model.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", hash, model.ErrNotFound)
	}
	tx := l.txs[handle]
	if l.now().Before(tx.confirmedAt) {
		return model.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", hash, model.ErrNotFound)
	}
	return tx.entry, nil
}

func (l *Ledger) allowed(issuer string) bool {
	if len(l.cfg.AllowedIssuers) == 0 {
		return true
	}
	for _, candidate := range l.cfg.AllowedIssuers {
		if model.SameIdentity(candidate, issuer) {
			return true
		}
	}
	return false
}

func txHash(contentHash string, nonce uint64) model.TxHandle {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	sum := sha256.Sum256(append([]byte(strings.ToLower(contentHash)), buf[:]...))
	return model.TxHandle(hex.EncodeToString(sum[:]))
}
