// internal/store/memory.go
//
// In-memory implementation of the session.Store interface.
// Sessions are game-scoped and intentionally not durable.
//
// Characteristics:
//   - Stores *session.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Get returns session.ErrNotFound for missing IDs.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/mizukendesu/kotonoha-wordle/internal/session"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                // guards sessions map
	sessions map[string]*session.Session // keyed by Session.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() session.Store {
	return &memory{sessions: make(map[string]*session.Session)}
}

// Save adds or replaces the session in the map.
func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, session.ErrNotFound
}

// Delete removes a session; deleting a missing ID is not an error.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep removes every session whose last activity is before cutoff.
func (m *memory) Sweep(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []*session.Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, s)
		}
	}
	return removed, nil
}
