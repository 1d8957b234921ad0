package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries idle for longer than
// the TTL are dropped; a zero TTL keeps them forever.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*memoryEntry
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	if s.expired(e) {
		delete(s.sessions, sessionID)
		return "", false, nil
	}
	v, ok := e.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	e, ok := s.sessions[sessionID]
	if !ok || s.expired(e) {
		e = &memoryEntry{values: make(map[string]string, 2)}
		s.sessions[sessionID] = e
	}
	e.values[key] = value
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

// Delete forgets a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports the number of stored sessions, expired ones included until
// the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// sweep drops expired sessions at most once per TTL. Caller holds mu.
func (s *MemoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
		}
	}
}
