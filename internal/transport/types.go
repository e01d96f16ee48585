package transport

import (
	"context"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Issuer interface {
		Issue(ctx context.Context, req model.IssueRequest) (*model.CertificateRecord, error)
	}
	Verifier interface {
		Verify(ctx context.Context, lookupKey string) (model.VerificationResult, error)
	}
	RecordReader interface {
		FindByID(ctx context.Context, id string) (*model.CertificateRecord, error)
	}
	EventReader interface {
		EventsByContentHash(ctx context.Context, contentHash string, limit int) ([]model.IssuanceEvent, error)
	}
	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)
