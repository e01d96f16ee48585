package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// GCSConfig configures the Cloud Storage backend.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
}

// GCSStore keeps content in a Cloud Storage bucket, one object per CID.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	logger *zap.Logger
}

func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *zap.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs content store: bucket not set")
	}
	opts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs content store: create client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		prefix: cfg.Prefix,
		logger: logger.Named("gcs_store"),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, data []byte, contentType string) (model.Locator, error) {
	locator, err := Locate(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrStoreRejected, err)
	}

	obj := s.bucket.Object(s.prefix + string(locator)).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentTypeOrDefault(contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", classifyGCSError("put", locator, err)
	}
	if err := w.Close(); err != nil {
		if preconditionFailed(err) {
			s.logger.Debug("content already present", zap.String("cid", string(locator)))
			return locator, nil
		}
		return "", classifyGCSError("put", locator, err)
	}

	s.logger.Debug("content stored", zap.String("cid", string(locator)), zap.Int("size", len(data)))
	return locator, nil
}

func (s *GCSStore) Get(ctx context.Context, locator model.Locator) ([]byte, error) {
	r, err := s.bucket.Object(s.prefix + string(locator)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs get %s: %w", locator, model.ErrNotFound)
	}
	if err != nil {
		return nil, classifyGCSError("get", locator, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyGCSError("get", locator, err)
	}
	return data, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func preconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}

func classifyGCSError(operation string, locator model.Locator, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: gcs %s %s: %v", model.ErrStoreUnavailable, operation, locator, err)
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: gcs %s %s: %v", model.ErrStoreUnavailable, operation, locator, err)
	case apiErr.Code == http.StatusForbidden && quotaReason(apiErr):
		return fmt.Errorf("%w: gcs %s %s: %v", model.ErrQuotaExceeded, operation, locator, err)
	default:
		return fmt.Errorf("%w: gcs %s %s: %v", model.ErrStoreRejected, operation, locator, err)
	}
}

func quotaReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "storageQuotaExceeded":
			return true
		}
	}
	return false
}
