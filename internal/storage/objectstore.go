package storage

import (
	"context"
	"fmt"

	"github.com/abduss/studynotes/internal/config"
	"github.com/abduss/studynotes/internal/objectstore"
	"go.uber.org/zap"
)

// OpenObjectStore connects the configured backend, makes sure its bucket is
// usable and wraps it with retries. onRetry may be nil.
func OpenObjectStore(ctx context.Context, cfg config.Config, log *zap.Logger, onRetry func(operation string)) (objectstore.Store, error) {
	var backend objectstore.Store

	switch cfg.ObjectStore.Driver {
	case config.DriverS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("connect s3: %w", err)
		}
		if err := CheckS3Bucket(ctx, client, cfg.S3.Bucket); err != nil {
			return nil, fmt.Errorf("check s3 bucket: %w", err)
		}
		publicURL := cfg.ObjectStore.PublicURL
		if publicURL == "" {
			publicURL = S3PublicURL(cfg.S3)
		}
		backend = objectstore.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix, publicURL)

	case config.DriverMinIO, "":
		client, err := NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		if err := EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		publicURL := cfg.ObjectStore.PublicURL
		if publicURL == "" {
			publicURL = MinIOPublicURL(cfg.MinIO)
		}
		backend = objectstore.NewMinIOStore(client, cfg.MinIO.Bucket, publicURL)

	default:
		return nil, fmt.Errorf("unknown object store driver %q", cfg.ObjectStore.Driver)
	}

	return objectstore.NewRetryingStore(backend, objectstore.RetryPolicy{
		MaxAttempts:     cfg.ObjectStore.Retry.MaxAttempts,
		InitialInterval: cfg.ObjectStore.Retry.InitialInterval,
		MaxInterval:     cfg.ObjectStore.Retry.MaxInterval,
		AttemptTimeout:  cfg.ObjectStore.Timeout,
	}, log, onRetry), nil
}
