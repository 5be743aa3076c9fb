package objectstore

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/config"
)

// S3Store keeps objects in an S3 compatible bucket, below an optional root prefix.
type S3Store struct {
	client *minio.Client
	bucket string
	root   string
}

func NewS3(cfg config.S3Config, root string) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create s3 client")
	}
	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		root:   strings.Trim(root, "/"),
	}, nil
}

func (s *S3Store) objectName(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if s.root == "" {
		return cleaned, nil
	}
	return path.Join(s.root, cleaned), nil
}

func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	name, err := s.objectName(key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, key, "read")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(err, key, "read")
	}
	return data, nil
}

func (s *S3Store) Write(ctx context.Context, key string, data []byte) error {
	name, err := s.objectName(key)
	if err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		return s.mapError(err, key, "write")
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := prefix
	if s.root != "" {
		fullPrefix = s.root + "/" + prefix
	}

	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "couldn't list objects with prefix '%s'", prefix)
		}
		key := obj.Key
		if s.root != "" {
			key = strings.TrimPrefix(key, s.root+"/")
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	name, err := s.objectName(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return s.mapError(err, key, "delete")
	}
	return nil
}

func (s *S3Store) mapError(err error, key, op string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return errors.Wrapf(ErrNotFound, "%s", key)
	}
	return errors.Wrapf(err, "couldn't %s %s", op, key)
}
