package repository

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	expiresAt time.Time
	hasTTL    bool
}

func (e sessionEntry) isExpired() bool {
	return e.hasTTL && time.Now().After(e.expiresAt)
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]sessionEntry)}
}

func (s *memorySessionStore) Put(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := sessionEntry{}
	if ttl > 0 {
		entry.hasTTL = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.sessions[sessionID] = entry
	return nil
}

func (s *memorySessionStore) Valid(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if entry.isExpired() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
