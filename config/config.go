package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/meta"
)

var OctodistCacheDir = func() string {
	dir, err := homedir.Dir()
	if err != nil {
		log.Fatalf("couldn't get user home directory: %s", err)
	}
	return filepath.Join(dir, ".octodist")
}()

var DefaultPath = filepath.Join(OctodistCacheDir, "octodist.yml")

type Config struct {
	Datanode DatanodeConfig `yaml:"datanode"`
	Frontend FrontendConfig `yaml:"frontend"`
}

type DatanodeConfig struct {
	ID          uint64        `yaml:"id"`
	Addr        string        `yaml:"addr"`
	MetricsAddr string        `yaml:"metricsAddr"`
	Storage     StorageConfig `yaml:"storage"`
	// Results with a limit of at most this many rows are sent back as a whole instead of streamed.
	MaterializeLimit int64 `yaml:"materializeLimit"`
}

type StorageType string

const (
	StorageTypeFile StorageType = "file"
	StorageTypeS3   StorageType = "s3"
)

type StorageConfig struct {
	Type  StorageType `yaml:"type"`
	Root  string      `yaml:"root"`
	S3    S3Config    `yaml:"s3"`
	Cache CacheConfig `yaml:"cache"`
	Retry RetryConfig `yaml:"retry"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Secure          bool   `yaml:"secure"`
}

type CacheConfig struct {
	// Capacity in bytes, caching is disabled when zero.
	Capacity int64 `yaml:"capacity"`
}

type RetryConfig struct {
	MaxElapsedTime time.Duration `yaml:"maxElapsedTime"`
}

type FrontendConfig struct {
	Peers  []meta.Peer   `yaml:"peers"`
	Tables []TableConfig `yaml:"tables"`
}

type TableConfig struct {
	Catalog string            `yaml:"catalog"`
	Schema  string            `yaml:"schema"`
	Table   string            `yaml:"table"`
	Fields  []datatypes.Field `yaml:"fields"`
	// Peers lists ids of the peers which hold the table's data.
	Peers []uint64 `yaml:"peers"`
}

func (t TableConfig) Name() meta.TableName {
	return meta.NewTableName(t.Catalog, t.Schema, t.Table)
}

func Default() *Config {
	return &Config{
		Datanode: DatanodeConfig{
			ID:   0,
			Addr: "127.0.0.1:4001",
			Storage: StorageConfig{
				Type: StorageTypeFile,
				Root: filepath.Join(OctodistCacheDir, "data"),
				Retry: RetryConfig{
					MaxElapsedTime: 30 * time.Second,
				},
			},
			MaterializeLimit: 1024,
		},
	}
}

// Read reads the configuration at the given path on top of the defaults.
// A missing file at the default path isn't an error.
func Read(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && path == DefaultPath {
		return cfg, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "couldn't read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Datanode.Storage.Type {
	case StorageTypeFile:
		if cfg.Datanode.Storage.Root == "" {
			return errors.New("file storage requires a root directory")
		}
	case StorageTypeS3:
		if cfg.Datanode.Storage.S3.Endpoint == "" || cfg.Datanode.Storage.S3.Bucket == "" {
			return errors.New("s3 storage requires an endpoint and a bucket")
		}
	default:
		return errors.Errorf("unknown storage type: '%s'", cfg.Datanode.Storage.Type)
	}

	peers := make(map[uint64]bool)
	for _, peer := range cfg.Frontend.Peers {
		if peers[peer.ID] {
			return errors.Errorf("duplicate peer id %d", peer.ID)
		}
		peers[peer.ID] = true
	}
	for _, table := range cfg.Frontend.Tables {
		for _, id := range table.Peers {
			if !peers[id] {
				return errors.Errorf("table %s references unknown peer %d", table.Name(), id)
			}
		}
	}
	return nil
}
