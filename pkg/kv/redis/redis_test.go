package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/leafsii/kvkeywords/pkg/kv/kvtest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisStore runs the conformance suite against a live server.
// REDIS_URL must point at a disposable database: every case flushes it.
func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping Redis tests")
	}

	factory := func(t *testing.T) kv.Store {
		store, err := New(context.Background(), redisURL)
		if err != nil {
			t.Fatalf("Failed to create Redis store: %v", err)
		}

		if _, err := store.FlushAll(context.Background()); err != nil {
			t.Fatalf("Failed to flush Redis: %v", err)
		}

		return store
	}

	kvtest.RunConformanceTests(t, factory)
}

func TestDialUnreachable(t *testing.T) {
	// Port 1 on loopback is reserved and refuses connections.
	_, err := Dial(context.Background(), kv.Config{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.ErrBackendUnavailable)
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"key not found", redis.Nil, false},
		{"canceled", context.Canceled, false},
		{"refused errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"reset message", errors.New("read tcp: connection reset by peer"), true},
		{"closed client", redis.ErrClosed, true},
		{"wrong type reply", errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsConnectionError(tt.err))
		})
	}
}
