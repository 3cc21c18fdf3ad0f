package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RetryPolicy bounds retries of a wrapped Store.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// AttemptTimeout caps each individual call. Zero means no cap.
	AttemptTimeout time.Duration
}

// RetryingStore retries transient failures of the wrapped Store with
// exponential backoff and applies a timeout to every attempt.
type RetryingStore struct {
	next    Store
	policy  RetryPolicy
	logger  *zap.Logger
	onRetry func(operation string)
}

// NewRetryingStore wraps next. onRetry, when not nil, is called once per retry.
func NewRetryingStore(next Store, policy RetryPolicy, logger *zap.Logger, onRetry func(operation string)) *RetryingStore {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingStore{next: next, policy: policy, logger: logger, onRetry: onRetry}
}

func (s *RetryingStore) Put(ctx context.Context, obj Object) (string, error) {
	var fileURL string
	err := s.retry(ctx, "put", func(attemptCtx context.Context) error {
		if _, err := obj.Body.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(fmt.Errorf("rewind upload body: %w", err))
		}
		u, err := s.next.Put(attemptCtx, obj)
		if err != nil {
			return err
		}
		fileURL = u
		return nil
	})
	if err != nil {
		return "", err
	}
	return fileURL, nil
}

func (s *RetryingStore) Remove(ctx context.Context, key string) error {
	return s.retry(ctx, "remove", func(attemptCtx context.Context) error {
		return s.next.Remove(attemptCtx, key)
	})
}

func (s *RetryingStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *RetryingStore) retry(ctx context.Context, operation string, fn func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	if s.policy.InitialInterval > 0 {
		policy.InitialInterval = s.policy.InitialInterval
	}
	if s.policy.MaxInterval > 0 {
		policy.MaxInterval = s.policy.MaxInterval
	}
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.policy.MaxAttempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		attemptCtx, cancel := s.attemptContext(ctx)
		defer cancel()

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		if s.onRetry != nil {
			s.onRetry(operation)
		}
		s.logger.Warn("object store call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	return backoff.RetryNotify(op, b, notify)
}

func (s *RetryingStore) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.policy.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.policy.AttemptTimeout)
}

// IsTransient reports whether err is worth retrying: timeouts, network
// errors, throttling and 5xx responses.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.HTTPStatusCode())
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.StatusCode != 0 {
		return retryableStatus(minioErr.StatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
