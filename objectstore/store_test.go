package objectstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/config"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "a/b/c.csv", want: "a/b/c.csv"},
		{key: "/a//b/", want: "a/b"},
		{key: "./a/./b", want: "a/b"},
		{key: "", wantErr: true},
		{key: "/", wantErr: true},
		{key: "../etc/passwd", wantErr: true},
		{key: "a/../../b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFsStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFs(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Write(ctx, "greptime/public/cpu/manifest.yml", []byte("format: csv")))
	require.NoError(t, store.Write(ctx, "greptime/public/cpu/data/0.csv", []byte("a,b\n1,2\n")))
	require.NoError(t, store.Write(ctx, "greptime/public/mem/manifest.yml", []byte("format: json")))

	data, err := store.Read(ctx, "greptime/public/cpu/manifest.yml")
	require.NoError(t, err)
	assert.Equal(t, "format: csv", string(data))

	require.NoError(t, store.Write(ctx, "greptime/public/cpu/manifest.yml", []byte("format: parquet")))
	data, err = store.Read(ctx, "greptime/public/cpu/manifest.yml")
	require.NoError(t, err)
	assert.Equal(t, "format: parquet", string(data))

	keys, err := store.List(ctx, "greptime/public/cpu/")
	require.NoError(t, err)
	assert.Equal(t, []string{"greptime/public/cpu/data/0.csv", "greptime/public/cpu/manifest.yml"}, keys)

	keys, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	require.NoError(t, store.Delete(ctx, "greptime/public/cpu/data/0.csv"))
	require.NoError(t, store.Delete(ctx, "greptime/public/cpu/data/0.csv"))
	_, err = store.Read(ctx, "greptime/public/cpu/data/0.csv")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = store.Read(ctx, "../outside")
	assert.Error(t, err)
}

type flakyStore struct {
	Store
	mu       sync.Mutex
	failures int
	reads    int
}

func (s *flakyStore) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	s.reads++
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset by peer")
	}
	return s.Store.Read(ctx, key)
}

func newMemStore(t *testing.T) Store {
	store, err := NewFs(t.TempDir())
	require.NoError(t, err)
	return store
}

func constantBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 5)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Store: newMemStore(t), failures: 2}
	require.NoError(t, inner.Write(ctx, "a", []byte("data")))

	store := WithRetryBackOff(inner, constantBackOff)
	data, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, 3, inner.reads)
}

func TestWithRetry_GivesUp(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Store: newMemStore(t), failures: 100}

	store := WithRetryBackOff(inner, constantBackOff)
	_, err := store.Read(ctx, "a")
	assert.EqualError(t, err, "connection reset by peer")
	assert.Equal(t, 6, inner.reads)
}

func TestWithRetry_NotFoundIsPermanent(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Store: newMemStore(t)}

	store := WithRetryBackOff(inner, constantBackOff)
	_, err := store.Read(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, inner.reads)
}

func TestWithCache(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Store: newMemStore(t)}
	require.NoError(t, inner.Write(ctx, "a", []byte("first")))

	store, err := WithCache(inner, 1<<20)
	require.NoError(t, err)
	cache := store.(*cachedStore).cache

	data, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	cache.Wait()

	data, err = store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, 1, inner.reads)

	require.NoError(t, store.Write(ctx, "a", []byte("second")))
	data, err = store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, 2, inner.reads)
	cache.Wait()

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Read(ctx, "a")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	store, err := New(config.StorageConfig{
		Type: config.StorageTypeFile,
		Root: t.TempDir(),
	})
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "x/y", []byte("z")))
	data, err := store.Read(ctx, "x/y")
	require.NoError(t, err)
	assert.Equal(t, "z", string(data))

	_, err = New(config.StorageConfig{Type: "ftp"})
	assert.EqualError(t, err, "unknown storage type: 'ftp'")
}
