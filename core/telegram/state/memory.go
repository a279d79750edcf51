package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/fitbot/core/logger"
)

// MemoryStore is an in-memory Store with optional idle expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-memory Store. Sessions untouched for ttl are
// dropped; ttl <= 0 keeps them until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) expired(s Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}

// Get returns the session for a user if it exists and has not expired.
func (m *MemoryStore) Get(_ context.Context, userID int64) (Session, bool, error) {
	now := m.now()

	m.mu.RLock()
	sess, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if m.expired(sess, now) {
		m.mu.Lock()
		// re-check: a Put may have refreshed it meanwhile
		if cur, still := m.sessions[userID]; still && m.expired(cur, now) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return Session{}, false, nil
	}
	return sess.Clone(), true, nil
}

// Put stores a copy of s and stamps its UpdatedAt.
func (m *MemoryStore) Put(_ context.Context, userID int64, s Session) error {
	s = s.Clone()
	s.UpdatedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

// Delete removes the entire session for a user.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Count returns the number of sessions that have not expired.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if !m.expired(s, now) {
			n++
		}
	}
	return n, nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Debug(ctx, "state", "session.sweep",
					slog.String("status", "ok"),
					slog.Int("count", removed),
				)
			}
		}
	}
}
