// Package contentstore implements content-addressed storage backends for certificate artifacts.
package contentstore

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store persists bytes and returns a locator that resolves to identical content.
	Store interface {
		Put(ctx context.Context, data []byte, contentType string) (model.Locator, error)
		Get(ctx context.Context, locator model.Locator) ([]byte, error)
	}

	StoreMetrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveSize(size int)
	}
)
