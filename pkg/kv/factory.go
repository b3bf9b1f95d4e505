package kv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// Backend represents the storage backend type
type Backend string

const (
	// BackendMemory uses the in-memory store
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis as the backend
	BackendRedis Backend = "redis"
)

// DefaultPort is the standard Redis port
const DefaultPort = 6379

// ErrUnknownBackend is returned by Open for a backend nobody registered
var ErrUnknownBackend = errors.New("unknown backend")

// Config holds configuration for creating a Store instance
type Config struct {
	// Backend specifies which storage backend to use
	Backend Backend

	// Host and Port locate the Redis server. Port defaults to 6379.
	Host string
	Port int

	// DB is the logical keyspace index
	DB int

	// Password is optional
	Password string

	// DialTimeout bounds the connection health check done by Open.
	// Default: 5 seconds
	DialTimeout time.Duration

	// JanitorInterval controls how often the in-memory store cleans up expired keys.
	// Zero disables background cleanup; expired keys are still hidden on access.
	JanitorInterval time.Duration
}

// Addr returns host:port for the configured server
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// StoreFactory defines a function that creates a Store instance
type StoreFactory func(ctx context.Context, cfg Config) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[Backend]StoreFactory)
)

// RegisterBackend registers a store factory for a given backend
func RegisterBackend(backend Backend, factory StoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[backend] = factory
}

// Open creates a new Store for the configured backend. An empty backend
// means Redis.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendRedis
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	factoriesMu.RLock()
	factory, exists := factories[cfg.Backend]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s (supported: %s, %s)",
			ErrUnknownBackend, cfg.Backend, BackendMemory, BackendRedis)
	}
	return factory(ctx, cfg)
}
