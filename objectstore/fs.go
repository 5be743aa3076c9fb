package objectstore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FsStore keeps objects as files below a root directory.
type FsStore struct {
	root string
}

func NewFs(root string) (*FsStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrap(err, "couldn't create storage root directory")
	}
	return &FsStore{root: root}, nil
}

func (s *FsStore) path(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *FsStore) Read(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%s", key)
	} else if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", key)
	}
	return data, nil
}

// Write replaces the object atomically.
func (s *FsStore) Write(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errors.Wrapf(err, "couldn't create directory for %s", key)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "couldn't create temporary file for %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "couldn't write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "couldn't close temporary file for %s", key)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrapf(err, "couldn't move %s into place", key)
	}
	return nil
}

func (s *FsStore) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't list objects with prefix '%s'", prefix)
	}
	sort.Strings(out)
	return out, nil
}

func (s *FsStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "couldn't delete %s", key)
	}
	return nil
}
