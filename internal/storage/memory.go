package storage

import (
	"context"
	"sync"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// MemoryStore is an in-process record store backed by a map, for embedding
// and tests. Records keep their insertion order; in absolute mode they are
// ordered by marker, ties broken by insertion order, as the SQLite backend
// does. Thread-safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	mode     timing.Mode
	sessions map[string][]session.Record
}

// NewMemoryStore creates an empty store for datasets of the given mode.
func NewMemoryStore(mode timing.Mode) (*MemoryStore, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		mode:     mode,
		sessions: make(map[string][]session.Record),
	}, nil
}

// Append adds records to a session in capture order.
func (s *MemoryStore) Append(sessionID string, records ...session.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		rec.SessionID = sessionID
		// Copy to prevent mutation.
		rec.Payload = append([]byte(nil), rec.Payload...)
		s.sessions[sessionID] = append(s.sessions[sessionID], rec)
	}
}

// Delete removes a session.
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// Len returns the number of sessions held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) FetchSession(ctx context.Context, sessionID string) ([]session.Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, queryFailed(sessionID, "fetch", err)
	}

	s.mu.RLock()
	stored := s.sessions[sessionID]
	out := make([]session.Record, len(stored))
	for i, rec := range stored {
		rec.Payload = append([]byte(nil), rec.Payload...)
		out[i] = rec
	}
	s.mu.RUnlock()

	sortByMarker(out, s.mode)
	return out, nil
}
