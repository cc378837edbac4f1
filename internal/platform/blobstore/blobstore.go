// Package blobstore abstracts report file storage. The server runs against
// S3 in production and an in-memory store in development and tests.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no object exists under the given key.
	ErrNotFound = errors.New("object not found")

	// ErrPresignNotSupported is returned by backends that cannot mint
	// time-limited download URLs. Callers fall back to streaming the
	// object through the API.
	ErrPresignNotSupported = errors.New("presigned URLs not supported by this backend")
)

// Object describes a stored blob.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// Store is the blob storage interface used by the report service.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (*Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *Object, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	meta Object
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(ctx context.Context, key, contentType string, body io.Reader) (*Object, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	obj := memoryObject{
		meta: Object{
			Key:         key,
			ContentType: contentType,
			Size:        int64(len(data)),
			CreatedAt:   time.Now(),
		},
		data: data,
	}

	s.mu.Lock()
	s.objects[key] = obj
	s.mu.Unlock()

	meta := obj.meta
	return &meta, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, *Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	meta := obj.meta
	return io.NopCloser(bytes.NewReader(obj.data)), &meta, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

// PresignGet is not supported for the in-memory backend.
func (s *MemoryStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrPresignNotSupported
}
