package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/vedran77/huddle/internal/objectstore"
)

var ErrInvalidObjectName = errors.New("invalid object name")

// ObjectStore is the part of objectstore.MinioStore the service needs.
type ObjectStore interface {
	HasBucket(bucket string) bool
	Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, name string) (io.ReadCloser, *objectstore.ObjectInfo, error)
	Remove(ctx context.Context, bucket string, names []string) error
}

// StorageService fronts the public buckets. Errors from the store are
// objectstore.ErrUnknownBucket, ErrObjectExists or ErrObjectNotFound.
type StorageService struct {
	store         ObjectStore
	publicBaseURL string
}

func NewStorageService(store ObjectStore, publicBaseURL string) *StorageService {
	return &StorageService{store: store, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// CleanName validates an object name and returns it without leading slashes.
func CleanName(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	if name == "" || len(name) > 512 || path.Clean(name) != name || strings.HasPrefix(name, "..") {
		return "", ErrInvalidObjectName
	}
	return name, nil
}

func (s *StorageService) Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error) {
	name, err := CleanName(name)
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, bucket, name, r, size, contentType); err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", bucket, name, err)
	}
	return s.PublicURL(bucket, name), nil
}

// Open streams a stored object. The caller closes the reader.
func (s *StorageService) Open(ctx context.Context, bucket, name string) (io.ReadCloser, *objectstore.ObjectInfo, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, nil, err
	}
	return s.store.Get(ctx, bucket, name)
}

func (s *StorageService) Remove(ctx context.Context, bucket string, names []string) error {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		c, err := CleanName(name)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, c)
	}
	if err := s.store.Remove(ctx, bucket, cleaned); err != nil {
		return fmt.Errorf("removing from %s: %w", bucket, err)
	}
	return nil
}

// PublicURL is the address under which the server serves the object.
func (s *StorageService) PublicURL(bucket, name string) string {
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBaseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
