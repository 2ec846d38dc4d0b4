// Package memory provides the in-process session store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/tally/internal/services/calculator/storage"
)

// Store is a mutex-guarded map of sessions. Contents do not survive a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]storage.SessionRecord
	clock    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]storage.SessionRecord),
		clock:    time.Now,
	}
}

// CreateSession registers a new session.
func (s *Store) CreateSession(_ context.Context, record storage.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[record.ID]; ok {
		return storage.ErrAlreadyExists
	}
	if record.LastUsedAt.IsZero() {
		record.LastUsedAt = record.CreatedAt
	}
	s.sessions[record.ID] = record
	return nil
}

// GetSession returns a session and marks it used.
func (s *Store) GetSession(_ context.Context, id string) (storage.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[id]
	if !ok {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	record.LastUsedAt = s.clock().UTC()
	s.sessions[id] = record
	return record, nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// ExpireSessions removes sessions last used before cutoff.
func (s *Store) ExpireSessions(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, record := range s.sessions {
		if record.LastUsedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ storage.SessionStore = (*Store)(nil)
