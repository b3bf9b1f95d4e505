package config

import (
	"testing"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "127.0.0.1", cfg.Store.Host)
	assert.Equal(t, 6379, cfg.Store.Port)
	assert.Equal(t, 5*time.Second, cfg.Store.DialTimeout)
	assert.Equal(t, time.Minute, cfg.Store.JanitorInterval)
	assert.Equal(t, 64, cfg.Sessions.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, 15*time.Second, cfg.Sessions.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KVK_ENV", "prod")
	t.Setenv("KVK_BACKEND", " Memory ")
	t.Setenv("KVK_REDIS_HOST", "redis-dev.com")
	t.Setenv("KVK_REDIS_PORT", "6380")
	t.Setenv("KVK_REDIS_DB", "2")
	t.Setenv("KVK_REDIS_PASSWORD", "123456")
	t.Setenv("KVK_DIAL_TIMEOUT", "250ms")
	t.Setenv("KVK_MEMORY_JANITOR_INTERVAL", "0s")
	t.Setenv("KVK_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.CORSAllowedOrigins)

	opts := cfg.Store.ConnectOptions()
	assert.Equal(t, kv.BackendMemory, opts.Backend)
	assert.Equal(t, "redis-dev.com", opts.Host)
	assert.Equal(t, 6380, opts.Port)
	assert.Equal(t, 2, opts.Keyspace)
	assert.Equal(t, "123456", opts.Password)
	assert.Equal(t, 250*time.Millisecond, opts.DialTimeout)
	assert.Zero(t, opts.JanitorInterval)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "KVK_BACKEND", "etcd"},
		{"port out of range", "KVK_REDIS_PORT", "70000"},
		{"negative keyspace", "KVK_REDIS_DB", "-1"},
		{"no sessions", "KVK_MAX_SESSIONS", "0"},
		{"zero idle timeout", "KVK_SESSION_IDLE_TIMEOUT", "0s"},
		{"negative janitor interval", "KVK_MEMORY_JANITOR_INTERVAL", "-1s"},
		{"zero rate limit", "KVK_RATE_LIMIT_RPM", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
