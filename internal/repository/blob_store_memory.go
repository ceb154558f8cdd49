package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"martapp/kiosk/internal/model"
)

type memoryBlobStore struct {
	mu      sync.RWMutex
	records map[string]model.BlobRecord
}

// NewMemoryBlobStore returns a BlobStore that lives for the session only.
func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{records: make(map[string]model.BlobRecord)}
}

func (s *memoryBlobStore) Get(_ context.Context, key string) (*model.BlobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return nil, ErrBlobMissing
	}
	out := record
	out.Data = make([]byte, len(record.Data))
	copy(out.Data, record.Data)
	return &out, nil
}

func (s *memoryBlobStore) Put(_ context.Context, record *model.BlobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.Size = int64(len(record.Data))
	stored.Data = make([]byte, len(record.Data))
	copy(stored.Data, record.Data)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records[record.Key] = stored
	return nil
}

func (s *memoryBlobStore) List(_ context.Context) ([]model.BlobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BlobRecord, 0, len(s.records))
	for _, record := range s.records {
		meta := record
		meta.Data = nil
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *memoryBlobStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]model.BlobRecord)
	return nil
}
