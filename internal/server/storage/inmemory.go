package storage

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/common"
	"github.com/google/uuid"
)

type blob struct {
	data     []byte
	storedAt time.Time
}

// InMemoryStore is a map-backed ObjectStore for tests and local development.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string]blob)}
}

func (s *InMemoryStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ValidateUpload(int64(len(data)), contentType); err != nil {
		return "", err
	}

	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = blob{data: cp, storedAt: time.Now()}

	return key, nil
}

func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b.data, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// ListKeys returns keys of blobs stored before olderThan, up to limit.
func (s *InMemoryStore) ListKeys(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key, b := range s.blobs {
		if b.storedAt.Before(olderThan) {
			keys = append(keys, key)
			if len(keys) == limit {
				break
			}
		}
	}
	return keys, nil
}

// Len reports the number of stored blobs. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
