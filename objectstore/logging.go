package objectstore

import (
	"context"
	"log"
	"time"
)

type loggingStore struct {
	inner Store
}

// WithLogging logs failed operations and the duration of slow ones.
func WithLogging(inner Store) Store {
	return &loggingStore{inner: inner}
}

const slowOperationThreshold = time.Second

func (s *loggingStore) log(op, key string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("object store %s of '%s' failed after %s: %s", op, key, elapsed, err)
	} else if elapsed > slowOperationThreshold {
		log.Printf("object store %s of '%s' took %s", op, key, elapsed)
	}
}

func (s *loggingStore) Read(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.inner.Read(ctx, key)
	s.log("read", key, start, err)
	return data, err
}

func (s *loggingStore) Write(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.inner.Write(ctx, key, data)
	s.log("write", key, start, err)
	return err
}

func (s *loggingStore) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.inner.List(ctx, prefix)
	s.log("list", prefix, start, err)
	return keys, err
}

func (s *loggingStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	s.log("delete", key, start, err)
	return err
}
