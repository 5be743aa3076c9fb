package objectstore

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("object not found")

// Store is a flat key-value object store. Keys use forward slashes.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// CleanKey normalizes a key and rejects ones escaping the store root.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.Errorf("invalid object key: '%s'", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", errors.Errorf("object key must not contain '..': '%s'", key)
		}
	}
	return cleaned, nil
}
