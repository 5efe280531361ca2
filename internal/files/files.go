// Package files uploads, links and removes objects in the platform's public
// buckets.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
)

const DefaultBucket = "avatars"

var ErrEmptyName = errors.New("object name is empty")

type options struct {
	bucket string
}

// Option tweaks a single call.
type Option func(*options)

// WithBucket targets bucket instead of the service default.
func WithBucket(bucket string) Option {
	return func(o *options) {
		if bucket != "" {
			o.bucket = bucket
		}
	}
}

type Service struct {
	storage backend.Storage
	bucket  string
	log     *logrus.Entry
}

// NewService returns a service whose calls go to bucket unless overridden.
// An empty bucket means DefaultBucket.
func NewService(storage backend.Storage, bucket string, log *logrus.Entry) *Service {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Service{storage: storage, bucket: bucket, log: log}
}

func (s *Service) resolve(opts []Option) options {
	o := options{bucket: s.bucket}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Upload stores r under name. Uploading over an existing object fails with
// backend.ErrConflict.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string, opts ...Option) error {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return ErrEmptyName
	}
	o := s.resolve(opts)

	if err := s.storage.Upload(ctx, o.bucket, name, r, size, contentType); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"bucket": o.bucket, "name": name}).Error("uploading file failed")
		return fmt.Errorf("uploading %s/%s: %w", o.bucket, name, err)
	}
	return nil
}

// URL returns the public address of name. It does not check that the object
// exists.
func (s *Service) URL(name string, opts ...Option) string {
	o := s.resolve(opts)
	return s.storage.PublicURL(o.bucket, strings.TrimLeft(name, "/"))
}

func (s *Service) Delete(ctx context.Context, name string, opts ...Option) error {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return ErrEmptyName
	}
	o := s.resolve(opts)

	if err := s.storage.Remove(ctx, o.bucket, []string{name}); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"bucket": o.bucket, "name": name}).Error("deleting file failed")
		return fmt.Errorf("deleting %s/%s: %w", o.bucket, name, err)
	}
	return nil
}
