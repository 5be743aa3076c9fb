package objectstore

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
)

type cachedStore struct {
	inner Store
	cache *ristretto.Cache
}

// WithCache caches object contents read through the store, up to capacity bytes.
// Returned slices are shared between readers and mustn't be modified.
func WithCache(inner Store, capacity int64) (Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * (capacity/1024 + 1),
		MaxCost:     capacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create object cache")
	}
	return &cachedStore{
		inner: inner,
		cache: cache,
	}, nil
}

func (s *cachedStore) Read(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.([]byte), nil
	}
	data, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, data, int64(len(data)))
	return data, nil
}

func (s *cachedStore) Write(ctx context.Context, key string, data []byte) error {
	s.cache.Del(key)
	if err := s.inner.Write(ctx, key, data); err != nil {
		return err
	}
	s.cache.Del(key)
	return nil
}

func (s *cachedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *cachedStore) Delete(ctx context.Context, key string) error {
	s.cache.Del(key)
	return s.inner.Delete(ctx, key)
}
