package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leafsii/kvkeywords/pkg/facade"
	"github.com/leafsii/kvkeywords/pkg/kv/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingGauge struct {
	mu   sync.Mutex
	open int
}

func (g *countingGauge) IncrementSessions(context.Context) {
	g.mu.Lock()
	g.open++
	g.mu.Unlock()
}

func (g *countingGauge) DecrementSessions(context.Context) {
	g.mu.Lock()
	g.open--
	g.mu.Unlock()
}

func (g *countingGauge) value() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func memoryConnect(ctx context.Context) (*facade.Connection, error) {
	return facade.NewConnection(memory.NewStore(), facade.ConnectOptions{Host: "localhost"}), nil
}

func TestOpenGetClose(t *testing.T) {
	gauge := &countingGauge{}
	m := NewManager(4, time.Minute, gauge, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, memoryConnect)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, gauge.value())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Close(ctx, s.ID))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, gauge.value())

	// The connection is closed with the session
	_, _, err = facade.New(nil).GetString(ctx, s.Conn, "k")
	assert.ErrorIs(t, err, facade.ErrConnectionClosed)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Close(ctx, s.ID), ErrNotFound)
}

func TestOpenEnforcesMaxSessions(t *testing.T) {
	m := NewManager(2, time.Minute, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := m.Open(ctx, memoryConnect)
		require.NoError(t, err)
	}

	dialed := false
	_, err := m.Open(ctx, func(ctx context.Context) (*facade.Connection, error) {
		dialed = true
		return memoryConnect(ctx)
	})
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.False(t, dialed, "a full manager must not dial")
	assert.Equal(t, 2, m.Len())
}

func TestOpenPropagatesConnectError(t *testing.T) {
	gauge := &countingGauge{}
	m := NewManager(2, time.Minute, gauge, nil)
	boom := errors.New("connection refused")

	_, err := m.Open(context.Background(), func(context.Context) (*facade.Connection, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, gauge.value())
}

func TestReapIdleClosesStaleSessions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gauge := &countingGauge{}
	m := NewManager(4, time.Minute, gauge, zap.New(core).Sugar())
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	stale, err := m.Open(ctx, memoryConnect)
	require.NoError(t, err)
	fresh, err := m.Open(ctx, memoryConnect)
	require.NoError(t, err)

	clock = clock.Add(50 * time.Second)
	_, err = m.Get(fresh.ID)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Second)
	assert.Equal(t, 1, m.reapIdle(ctx))

	_, err = m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, gauge.value())

	closed := logs.FilterMessage("Session closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, "idle", closed[0].ContextMap()["reason"])
}

func TestCloseAll(t *testing.T) {
	gauge := &countingGauge{}
	m := NewManager(4, time.Minute, gauge, nil)
	ctx := context.Background()

	var sessions []*Session
	for i := 0; i < 3; i++ {
		s, err := m.Open(ctx, memoryConnect)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	m.CloseAll(ctx)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, gauge.value())
	for _, s := range sessions {
		_, err := facade.New(nil).Delete(ctx, s.Conn, "k")
		assert.ErrorIs(t, err, facade.ErrConnectionClosed)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	m := NewManager(1, time.Minute, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
