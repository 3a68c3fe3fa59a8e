package session

import (
	"context"
	"sync"
	"time"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

type memEntry struct {
	record  Record
	flashes []models.Flash
}

// MemStore is the in-process Store used by single-instance deployments.
// All operations run under one mutex, which also makes flash take-and-clear
// atomic.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*memEntry
}

// NewMemStore returns an empty in-memory session store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: map[string]*memEntry{},
	}
}

// Save stores a copy of the record under its token.
func (s *MemStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[record.Token] = &memEntry{record: *record}

	return nil
}

// Load returns a copy of the record, or (nil, nil) when the token is
// unknown or the session has expired. Expired sessions are dropped on
// the spot.
func (s *MemStore) Load(ctx context.Context, token string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.record.ExpiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}

	record := entry.record

	return &record, nil
}

// Delete removes the session; deleting an absent token is a no-op.
func (s *MemStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)

	return nil
}

// DeleteExpired sweeps out expired sessions and reports how many were
// removed.
func (s *MemStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for token, entry := range s.sessions {
		if now.After(entry.record.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}

	return removed, nil
}

// AppendFlash attaches a flash to a live session. Flashes addressed to
// unknown tokens are dropped silently.
func (s *MemStore) AppendFlash(ctx context.Context, token string, flash models.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return nil
	}
	entry.flashes = append(entry.flashes, flash)

	return nil
}

// TakeFlashes returns the pending flashes and clears them atomically.
func (s *MemStore) TakeFlashes(ctx context.Context, token string) ([]models.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok || len(entry.flashes) == 0 {
		return nil, nil
	}

	flashes := entry.flashes
	entry.flashes = nil

	return flashes, nil
}
