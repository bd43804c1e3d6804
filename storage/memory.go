package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryStore keeps objects in process. It backs local development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Upload(ctx context.Context, obj Object) (StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return StoredObject{}, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return StoredObject{}, fmt.Errorf("memory put %s: %w", obj.Key, err)
	}

	s.mu.Lock()
	s.objects[obj.Key] = memoryObject{contentType: obj.ContentType, data: buf.Bytes()}
	s.mu.Unlock()

	return StoredObject{Key: obj.Key, URL: publicURL(s.baseURL, obj.Key)}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("memory delete %s: %w", key, ErrObjectNotFound)
	}
	delete(s.objects, key)
	return nil
}

// Keys lists stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns an object's bytes and content type.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}
