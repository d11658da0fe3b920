package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"ayuda/pkg/platform/sentinel"
)

type object struct {
	body        []byte
	contentType string
}

// MemoryStore keeps objects in a map. Presigned URLs use the memory://
// scheme and are only meaningful to tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]object)}
}

func (s *MemoryStore) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return fmt.Errorf("read object body: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("object body is %d bytes, expected %d", len(data), size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{body: data, contentType: contentType}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) Presign(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", sentinel.ErrNotFound
	}
	u := url.URL{Scheme: "memory", Path: "/" + key, RawQuery: url.Values{"expires": {expiry.String()}}.Encode()}
	return u.String(), nil
}

// Object returns a copy of the stored bytes. Test helper.
func (s *MemoryStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(o.body), true
}
