package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/sethvargo/go-retry"
)

// RetryStore retries failed backend calls with exponential backoff and gives
// each attempt its own timeout. Not-found and already-exists answers are
// final. Once retries run out the error is reported as
// common.ErrorPersistence.
type RetryStore struct {
	inner   Store
	retries uint64
	base    time.Duration
	timeout time.Duration
}

// WithRetry decorates inner. A zero timeout disables the per-attempt deadline.
func WithRetry(inner Store, retries uint64, base, timeout time.Duration) *RetryStore {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	return &RetryStore{inner: inner, retries: retries, base: base, timeout: timeout}
}

func isFinal(err error) bool {
	return errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists)
}

func (s *RetryStore) do(ctx context.Context, op string, kind Kind, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.base))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		err := fn(attemptCtx)
		if err == nil || isFinal(err) {
			return err
		}
		return retry.RetryableError(err)
	})

	if err == nil || isFinal(err) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", common.ErrorPersistence, op, kind, err)
}

func (s *RetryStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	var doc []byte
	err := s.do(ctx, "get", kind, func(ctx context.Context) error {
		var err error
		doc, err = s.inner.Get(ctx, kind, key)
		return err
	})
	return doc, err
}

func (s *RetryStore) Insert(ctx context.Context, kind Kind, key string, doc []byte) error {
	return s.do(ctx, "insert", kind, func(ctx context.Context) error {
		return s.inner.Insert(ctx, kind, key, doc)
	})
}

func (s *RetryStore) Put(ctx context.Context, kind Kind, key string, doc []byte) error {
	return s.do(ctx, "put", kind, func(ctx context.Context) error {
		return s.inner.Put(ctx, kind, key, doc)
	})
}

func (s *RetryStore) Load(ctx context.Context, kind Kind) (map[string][]byte, error) {
	var docs map[string][]byte
	err := s.do(ctx, "load", kind, func(ctx context.Context) error {
		var err error
		docs, err = s.inner.Load(ctx, kind)
		return err
	})
	return docs, err
}

func (s *RetryStore) Close() error { return s.inner.Close() }
