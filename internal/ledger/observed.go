package ledger

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// ObservedClient records metrics around a ledger Client.
type ObservedClient struct {
	client  Client
	metrics ClientMetrics
}

func NewObservedClient(client Client, metrics ClientMetrics) *ObservedClient {
	return &ObservedClient{
		client:  client,
		metrics: metrics,
	}
}

func (c *ObservedClient) Submit(ctx context.Context, contentHash string, metadataLocator model.Locator, subjectDigest, issuer string) (handle model.TxHandle, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("submit", err, started)
	}()
	return c.client.Submit(ctx, contentHash, metadataLocator, subjectDigest, issuer)
}

func (c *ObservedClient) AwaitConfirmation(ctx context.Context, handle model.TxHandle, timeout time.Duration) (ref model.TxReference, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("await_confirmation", err, started)
	}()
	return c.client.AwaitConfirmation(ctx, handle, timeout)
}

func (c *ObservedClient) Lookup(ctx context.Context, contentHash string) (entry model.LedgerEntry, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("lookup", err, started)
	}()
	return c.client.Lookup(ctx, contentHash)
}
