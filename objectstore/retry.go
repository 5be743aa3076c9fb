package objectstore

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

type retryStore struct {
	inner      Store
	newBackOff func() backoff.BackOff
}

// WithRetry retries failed operations with exponential backoff, giving up after maxElapsed.
// Missing objects and invalid keys are never retried.
func WithRetry(inner Store, maxElapsed time.Duration) Store {
	return WithRetryBackOff(inner, func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = maxElapsed
		return b
	})
}

func WithRetryBackOff(inner Store, newBackOff func() backoff.BackOff) Store {
	return &retryStore{
		inner:      inner,
		newBackOff: newBackOff,
	}
}

func (s *retryStore) retry(ctx context.Context, name string, op func() error) error {
	return backoff.RetryNotify(func() error {
		err := op()
		if errors.Is(err, ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.newBackOff(), ctx), func(err error, wait time.Duration) {
		log.Printf("object store %s failed, retrying in %s: %s", name, wait, err)
	})
}

func (s *retryStore) Read(ctx context.Context, key string) ([]byte, error) {
	if _, err := CleanKey(key); err != nil {
		return nil, err
	}
	var out []byte
	err := s.retry(ctx, "read", func() error {
		data, err := s.inner.Read(ctx, key)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (s *retryStore) Write(ctx context.Context, key string, data []byte) error {
	if _, err := CleanKey(key); err != nil {
		return err
	}
	return s.retry(ctx, "write", func() error {
		return s.inner.Write(ctx, key, data)
	})
}

func (s *retryStore) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	err := s.retry(ctx, "list", func() error {
		keys, err := s.inner.List(ctx, prefix)
		if err != nil {
			return err
		}
		out = keys
		return nil
	})
	return out, err
}

func (s *retryStore) Delete(ctx context.Context, key string) error {
	if _, err := CleanKey(key); err != nil {
		return err
	}
	return s.retry(ctx, "delete", func() error {
		return s.inner.Delete(ctx, key)
	})
}
