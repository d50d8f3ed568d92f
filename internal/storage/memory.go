package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
)

// MemoryStore keeps objects in process. It serves STORE_DRIVER=memory and
// tests; URLs it hands out are not fetchable over HTTP.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	bucket  string
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), bucket: bucket}
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if size >= 0 && n != size {
		return "", fmt.Errorf("short upload for %s: got %d of %d bytes", key, n, size)
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	s.mu.Unlock()
	return s.url(key), nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PresignedGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", common.NewError(common.ErrNotFound, "File not found")
	}
	return s.url(key) + "?" + url.Values{"expires": {expiry.String()}}.Encode(), nil
}

// Object returns the stored bytes of key.
func (s *MemoryStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, ok
}

func (s *MemoryStore) url(key string) string {
	return "memory://" + s.bucket + "/" + key
}
