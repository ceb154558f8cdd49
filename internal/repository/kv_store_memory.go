package repository

import (
	"context"
	"sync"
)

type memoryKVStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKVStore returns a KVStore that lives for the session only. Used
// when the storage engine is not available, and in tests.
func NewMemoryKVStore() KVStore {
	return &memoryKVStore{entries: make(map[string][]byte)}
}

func (s *memoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memoryKVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = stored
	return nil
}

func (s *memoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryKVStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	return nil
}
