// Package session tracks the open keyword connections of remote callers.
//
// A remote harness cannot hold a *facade.Connection, so each connection is
// registered under an opaque handle that later keyword calls pass back.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leafsii/kvkeywords/pkg/facade"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)

// Gauge tracks how many sessions are open
type Gauge interface {
	IncrementSessions(ctx context.Context)
	DecrementSessions(ctx context.Context)
}

type nopGauge struct{}

func (nopGauge) IncrementSessions(context.Context) {}
func (nopGauge) DecrementSessions(context.Context) {}

type Session struct {
	ID      string
	Conn    *facade.Connection
	Created time.Time

	lastActive atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// LastActive is the time of the last lookup
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxSessions int
	idleTimeout time.Duration
	gauge       Gauge
	logger      *zap.SugaredLogger
	now         func() time.Time
}

// NewManager creates a Manager. A nil gauge or logger is replaced with a
// no-op.
func NewManager(maxSessions int, idleTimeout time.Duration, gauge Gauge, logger *zap.SugaredLogger) *Manager {
	if gauge == nil {
		gauge = nopGauge{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		idleTimeout: idleTimeout,
		gauge:       gauge,
		logger:      logger,
		now:         time.Now,
	}
}

// Open dials a connection with connect and registers it. Capacity is checked
// before and after dialing, so a connection that loses the race for the last
// slot is closed again.
func (m *Manager) Open(ctx context.Context, connect func(context.Context) (*facade.Connection, error)) (*Session, error) {
	if m.Len() >= m.maxSessions {
		return nil, ErrTooManySessions
	}

	conn, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:      uuid.NewString(),
		Conn:    conn,
		Created: now,
	}
	s.touch(now)

	m.mu.Lock()
	if len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		_ = conn.Close()
		return nil, ErrTooManySessions
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.gauge.IncrementSessions(ctx)
	m.logger.Infow("Session opened", "session", s.ID, "conn", conn.String())
	return s, nil
}

// Get returns the session and marks it active
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close unregisters the session and closes its connection
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	m.release(ctx, s, "closed")
	return nil
}

// CloseAll closes every session, typically on shutdown
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		m.release(ctx, s, "shutdown")
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run closes idle sessions until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reapIdle(ctx)
		}
	}
}

func (m *Manager) reapIdle(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTimeout)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			idle = append(idle, s)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.release(ctx, s, "idle")
	}
	return len(idle)
}

func (m *Manager) release(ctx context.Context, s *Session, reason string) {
	if err := s.Conn.Close(); err != nil {
		m.logger.Warnw("Failed to close session connection", "session", s.ID, "error", err)
	}
	m.gauge.DecrementSessions(ctx)
	m.logger.Infow("Session closed", "session", s.ID, "reason", reason)
}
