// Package ledger holds backend independent ledger client plumbing.
package ledger

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Client registers content hashes on an append-only ledger and reads them back.
	Client interface {
		Submit(ctx context.Context, contentHash string, metadataLocator model.Locator, subjectDigest, issuer string) (model.TxHandle, error)
		AwaitConfirmation(ctx context.Context, handle model.TxHandle, timeout time.Duration) (model.TxReference, error)
		Lookup(ctx context.Context, contentHash string) (model.LedgerEntry, error)
	}

	ClientMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
