package verification

import (
	"context"
	"time"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	RecordFinder interface {
		FindByHash(ctx context.Context, contentHash string) (*model.CertificateRecord, error)
		FindByTxReference(ctx context.Context, ref model.TxReference) (*model.CertificateRecord, error)
	}
	LedgerReader interface {
		Lookup(ctx context.Context, contentHash string) (model.LedgerEntry, error)
	}
	Journal interface {
		Record(ctx context.Context, event model.IssuanceEvent)
	}
	Metrics interface {
		ObserveVerify(outcome string, err error, started time.Time)
	}
)
