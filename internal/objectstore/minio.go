// Package objectstore keeps uploaded files in an S3 compatible store.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrUnknownBucket  = errors.New("unknown bucket")
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Buckets   []string
}

type ObjectInfo struct {
	Size         int64
	ContentType  string
	LastModified time.Time
}

// MinioStore only touches the buckets it was configured with.
type MinioStore struct {
	client  *minio.Client
	buckets map[string]struct{}
}

func NewMinioStore(cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	buckets := make(map[string]struct{}, len(cfg.Buckets))
	for _, b := range cfg.Buckets {
		buckets[b] = struct{}{}
	}
	return &MinioStore{client: client, buckets: buckets}, nil
}

// EnsureBuckets creates the configured buckets that do not exist yet.
func (s *MinioStore) EnsureBuckets(ctx context.Context) error {
	for bucket := range s.buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

func (s *MinioStore) HasBucket(bucket string) bool {
	_, ok := s.buckets[bucket]
	return ok
}

// Put stores a new object. Existing objects are never overwritten.
func (s *MinioStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	if !s.HasBucket(bucket) {
		return ErrUnknownBucket
	}

	_, err := s.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return ErrObjectExists
	case !isNotFound(err):
		return fmt.Errorf("stat object: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Get opens an object for reading. The caller closes the reader.
func (s *MinioStore) Get(ctx context.Context, bucket, name string) (io.ReadCloser, *ObjectInfo, error) {
	if !s.HasBucket(bucket) {
		return nil, nil, ErrUnknownBucket
	}

	obj, err := s.client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNotFound(err) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("stat object: %w", err)
	}

	return obj, &ObjectInfo{Size: stat.Size, ContentType: stat.ContentType, LastModified: stat.LastModified}, nil
}

// Remove deletes the named objects. Missing objects are not an error.
func (s *MinioStore) Remove(ctx context.Context, bucket string, names []string) error {
	if !s.HasBucket(bucket) {
		return ErrUnknownBucket
	}
	for _, name := range names {
		if err := s.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s: %w", name, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}
