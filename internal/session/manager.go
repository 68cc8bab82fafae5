// internal/session/manager.go
//
// Manager is the single dispatch point between transports and the game
// core. Responsibilities:
//   - Create sessions with a fresh initial state.
//   - Apply actions through game.Engine.Reduce under the session lock.
//   - Schedule RevealComplete once a SubmitGuess starts a reveal, and drop
//     that timer on Reset or when the session goes away.
//   - Publish snapshots to subscribers after every transition.
//   - Sweep idle sessions.

package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

// Manager owns all sessions for one Engine.
type Manager struct {
	engine *game.Engine
	store  Store
	sched  Scheduler
	now    func() time.Time
}

// NewManager wires an engine to a store and a reveal scheduler.
func NewManager(engine *game.Engine, store Store, sched Scheduler) *Manager {
	if sched == nil {
		sched = WallClock
	}
	return &Manager{engine: engine, store: store, sched: sched, now: time.Now}
}

// Engine exposes the engine (dimensions, target reveal on loss).
func (m *Manager) Engine() *game.Engine { return m.engine }

// Create starts a new game.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := newSession(uuid.NewString(), m.engine.InitialState(), m.now())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	log.Debug().Str("gameId", s.id).Msg("session created")
	return s, nil
}

// Get looks up a session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Snapshot returns the current state of a session.
func (m *Manager) Snapshot(ctx context.Context, id string) (game.State, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return game.State{}, err
	}
	return s.Snapshot(), nil
}

// Dispatch applies a to the session and returns the resulting snapshot.
// Rejected actions are not errors: the unchanged state is returned.
func (m *Manager) Dispatch(ctx context.Context, id string, a game.Action) (game.State, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return game.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game.State{}, ErrNotFound
	}
	return m.transitionLocked(s, a), nil
}

// Subscribe streams snapshots for a session until cancel is called or the
// session is removed. The current state is not replayed.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan game.State, func(), error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribe()
	return ch, cancel, nil
}

// Remove deletes a session and stops its timers.
func (m *Manager) Remove(ctx context.Context, id string) error {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	s.close()
	return nil
}

// Sweep removes sessions idle for longer than idle.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	removed, err := m.store.Sweep(ctx, m.now().Add(-idle))
	if err != nil {
		return 0, err
	}
	for _, s := range removed {
		s.close()
	}
	return len(removed), nil
}

// RunJanitor sweeps every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx, idle)
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Msg("swept idle sessions")
			}
		}
	}
}

// transitionLocked runs one reducer step. s.mu must be held.
func (m *Manager) transitionLocked(s *Session, a game.Action) game.State {
	prev := s.state
	next := m.engine.Reduce(prev, a)
	s.state = next
	s.lastActive = m.now()

	if _, ok := a.(game.Reset); ok {
		s.stopTimerLocked()
	}
	if !prev.IsRevealing && next.IsRevealing {
		m.scheduleRevealLocked(s)
	}

	log.Debug().
		Str("gameId", s.id).
		Str("action", game.ActionName(a)).
		Int("row", next.CurrentRow).
		Int("col", next.CurrentCol).
		Str("status", string(next.GameStatus)).
		Bool("revealing", next.IsRevealing).
		Msg("transition")

	s.publishLocked(next)
	return next.Clone()
}

// scheduleRevealLocked arranges for RevealComplete after the reveal
// animation. A later Reset or close bumps gen so a late callback is ignored.
func (m *Manager) scheduleRevealLocked(s *Session) {
	s.stopTimerLocked()
	gen := s.gen
	s.timer = m.sched.AfterFunc(game.RevealDuration(m.engine.WordLength()), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.gen != gen {
			return
		}
		s.timer = nil
		m.transitionLocked(s, game.RevealComplete{})
	})
}
