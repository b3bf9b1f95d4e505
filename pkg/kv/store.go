package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a scalar key is not found
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// TTL sentinels, matching what Redis (and go-redis v9) report.
const (
	// TTLNoExpiry is returned by TTL for a key that exists but never expires
	TTLNoExpiry = time.Duration(-1)
	// TTLKeyMissing is returned by TTL for a key that does not exist
	TTLKeyMissing = time.Duration(-2)
)

// ScoredMember is a sorted-set member with its ordering score
type ScoredMember struct {
	Member string
	Score  float64
}

// Store defines the interface for a Redis-like key-value store.
//
// Reads of collections (lists, hashes, sets, sorted sets) return an empty
// result for a missing key. Only Get reports absence, with ErrNotFound.
type Store interface {
	// String operations
	Set(ctx context.Context, key string, value string) (string, error)
	Get(ctx context.Context, key string) (string, error)

	// List operations
	LPush(ctx context.Context, key string, values ...string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Hash operations
	HSet(ctx context.Context, key string, field string, value string) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Set operations
	SAdd(ctx context.Context, key string, members ...string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)

	// Sorted set operations
	ZAdd(ctx context.Context, key string, members ...ScoredMember) (int64, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Key operations
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	FlushAll(ctx context.Context) (string, error)

	// Health check
	Ping(ctx context.Context) error

	// Cleanup
	Close() error
}

// NormalizeRange resolves an inclusive Redis-style index range against a
// collection of length n. Negative indices count from the tail. ok is false
// when the range selects nothing.
func NormalizeRange(start, stop, n int64) (from, to int64, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start = n + start
	}
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
