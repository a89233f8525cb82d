package storage

import (
	"context"
	"errors"
	"sync"

	catalogapp "github.com/wimotos/backend/internal/application/catalog"
	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/domain/shared"
)

var (
	_ catalogapp.ImageStore     = (*MemoryObjectStorage)(nil)
	_ notificationapp.BlobStore = (*MemoryObjectStorage)(nil)
)

// MemoryObjectStorage keeps objects in process memory. Used by tests and by
// development setups without an S3 endpoint.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]memoryObject)}
}

// EnsureBucket is a no-op
func (s *MemoryObjectStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	cp := append([]byte(nil), data...)
	s.mu.Lock()
	s.objects[key] = memoryObject{data: cp, contentType: contentType}
	s.mu.Unlock()
	return nil
}

// GetBytes returns a copy of the object under key
func (s *MemoryObjectStorage) GetBytes(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, shared.NotFoundError("object " + key)
	}
	return append([]byte(nil), obj.data...), nil
}

// DeleteObject removes key. Missing keys are not an error.
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// DownloadURL returns a memory:// URL naming the key
func (s *MemoryObjectStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	return "memory://" + key, nil
}

// ContentType returns the stored content type of key
func (s *MemoryObjectStorage) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
