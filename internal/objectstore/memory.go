package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStore keeps objects in process memory. It follows the same bucket
// and overwrite rules as MinioStore.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
}

func NewMemoryStore(buckets []string) *MemoryStore {
	s := &MemoryStore{buckets: make(map[string]map[string]memoryObject, len(buckets))}
	for _, b := range buckets {
		s.buckets[b] = make(map[string]memoryObject)
	}
	return s
}

func (s *MemoryStore) HasBucket(bucket string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[bucket]
	return ok
}

func (s *MemoryStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return ErrUnknownBucket
	}
	if _, exists := b[name]; exists {
		return ErrObjectExists
	}
	b[name] = memoryObject{
		data: data,
		info: ObjectInfo{Size: int64(len(data)), ContentType: contentType, LastModified: time.Now()},
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, bucket, name string) (io.ReadCloser, *ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, nil, ErrUnknownBucket
	}
	obj, ok := b[name]
	if !ok {
		return nil, nil, ErrObjectNotFound
	}
	info := obj.info
	return io.NopCloser(bytes.NewReader(obj.data)), &info, nil
}

func (s *MemoryStore) Remove(ctx context.Context, bucket string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return ErrUnknownBucket
	}
	for _, name := range names {
		delete(b, name)
	}
	return nil
}
