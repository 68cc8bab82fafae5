// internal/session/session.go
//
// A Session is one player's game: a single game.State behind a mutex.
// Every transition for the game (HTTP, WebSocket, reveal timer) goes
// through Manager, which takes this lock, so transitions are serialized.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

// ErrNotFound is returned for unknown or swept session IDs.
var ErrNotFound = errors.New("session: not found")

// subscriberBuffer is how many snapshots a slow subscriber may lag behind.
const subscriberBuffer = 8

// Store persists sessions for the lifetime of the process.
// Implementations may be backed by memory (internal/store), Redis, etc.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// Sweep removes sessions last active before cutoff and returns them.
	Sweep(ctx context.Context, cutoff time.Time) ([]*Session, error)
}

// Session holds the state of a single game.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	state      game.State
	lastActive time.Time
	gen        uint64 // bumped whenever a pending reveal becomes stale
	timer      Timer  // pending RevealComplete, if any
	closed     bool
	subs       map[int]chan game.State
	nextSub    int
}

func newSession(id string, st game.State, now time.Time) *Session {
	return &Session{
		id:         id,
		createdAt:  now,
		state:      st,
		lastActive: now,
		subs:       make(map[int]chan game.State),
	}
}

// ID is the session identifier (a UUID).
func (s *Session) ID() string { return s.id }

// CreatedAt is when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastActive is the time of the most recent transition.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// subscribe registers a snapshot channel. Caller must not hold s.mu.
func (s *Session) subscribe() (<-chan game.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan game.State, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publishLocked fans out a snapshot without blocking. s.mu must be held.
func (s *Session) publishLocked(st game.State) {
	for id, ch := range s.subs {
		select {
		case ch <- st.Clone():
		default:
			log.Warn().Str("gameId", s.id).Int("subscriber", id).Msg("dropping snapshot for slow subscriber")
		}
	}
}

// stopTimerLocked cancels any pending reveal. s.mu must be held.
func (s *Session) stopTimerLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// close stops timers and ends all subscriptions.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
