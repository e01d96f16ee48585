package contentstore

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// ObservedStore records metrics around a Store.
type ObservedStore struct {
	store   Store
	metrics StoreMetrics
}

func NewObservedStore(store Store, metrics StoreMetrics) *ObservedStore {
	return &ObservedStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *ObservedStore) Put(ctx context.Context, data []byte, contentType string) (locator model.Locator, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("put", err, started)
		if err == nil {
			s.metrics.ObserveSize(len(data))
		}
	}()
	return s.store.Put(ctx, data, contentType)
}

func (s *ObservedStore) Get(ctx context.Context, locator model.Locator) (data []byte, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("get", err, started)
	}()
	return s.store.Get(ctx, locator)
}
