package contentstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

const badgerKeyPrefix = "cid/"

// BadgerConfig configures the local content store.
type BadgerConfig struct {
	// Dir is the data directory; empty runs the store in memory.
	Dir string
	// MaxBytes bounds the total size of stored content; zero disables the quota.
	MaxBytes int64
}

// BadgerStore keeps content in a local badger database keyed by CID.
type BadgerStore struct {
	db       *badger.DB
	maxBytes int64
	logger   *zap.Logger

	mu   sync.Mutex
	used int64
}

func NewBadgerStore(cfg BadgerConfig, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	used, err := storedBytes(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan badger: %w", err)
	}
	return &BadgerStore{
		db:       db,
		maxBytes: cfg.MaxBytes,
		logger:   logger.Named("badger_store"),
		used:     used,
	}, nil
}

func storedBytes(db *badger.DB) (int64, error) {
	var total int64
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			total += it.Item().ValueSize()
		}
		return nil
	})
	return total, err
}

func (s *BadgerStore) Put(_ context.Context, data []byte, _ string) (model.Locator, error) {
	locator, err := Locate(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrStoreRejected, err)
	}
	key := []byte(badgerKeyPrefix + string(locator))

	s.mu.Lock()
	defer s.mu.Unlock()

	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if s.maxBytes > 0 && s.used+int64(len(data)) > s.maxBytes {
			return model.ErrQuotaExceeded
		}
		written = true
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrQuotaExceeded):
		return "", fmt.Errorf("badger put %s: %w", locator, err)
	case errors.Is(err, badger.ErrTxnTooBig):
		return "", fmt.Errorf("%w: badger put %s: %v", model.ErrStoreRejected, locator, err)
	default:
		return "", fmt.Errorf("%w: badger put %s: %v", model.ErrStoreUnavailable, locator, err)
	}

	if written {
		s.used += int64(len(data))
	}
	s.logger.Debug("content stored", zap.String("cid", string(locator)), zap.Int("size", len(data)))
	return locator, nil
}

func (s *BadgerStore) Get(_ context.Context, locator model.Locator) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + string(locator)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("badger get %s: %w", locator, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: badger get %s: %v", model.ErrStoreUnavailable, locator, err)
	}
	return data, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
