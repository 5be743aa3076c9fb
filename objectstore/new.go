package objectstore

import (
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/config"
)

// New builds the store described by the configuration.
// Remote backends are wrapped with retries and, if configured, a read cache.
func New(cfg config.StorageConfig) (Store, error) {
	var store Store
	switch cfg.Type {
	case config.StorageTypeFile, "":
		fsStore, err := NewFs(cfg.Root)
		if err != nil {
			return nil, err
		}
		store = fsStore
	case config.StorageTypeS3:
		s3Store, err := NewS3(cfg.S3, cfg.Root)
		if err != nil {
			return nil, err
		}
		store = WithRetry(s3Store, cfg.Retry.MaxElapsedTime)
		if cfg.Cache.Capacity > 0 {
			cached, err := WithCache(store, cfg.Cache.Capacity)
			if err != nil {
				return nil, err
			}
			store = cached
		}
	default:
		return nil, errors.Errorf("unknown storage type: '%s'", cfg.Type)
	}
	return WithLogging(WithMetrics(store)), nil
}
