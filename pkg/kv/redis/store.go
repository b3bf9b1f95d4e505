package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed implementation of the kv.Store interface
type Store struct {
	client *redis.Client
}

var connectionErrors = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"connection closed",
	"client is closed",
	"EOF",
}

// IsConnectionError checks if an error is a connection-related error
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// redis.Nil means "key not found"
	if errors.Is(err, redis.Nil) {
		return false
	}

	// Context cancellation by caller is not a backend problem
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ECONNABORTED, syscall.ETIMEDOUT:
			return true
		}
	}

	errStr := err.Error()
	for _, connErr := range connectionErrors {
		if strings.Contains(errStr, connErr) {
			return true
		}
	}

	return false
}

// wrapError tags connection errors with ErrBackendUnavailable and leaves
// server replies (WRONGTYPE, syntax errors) untouched.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) {
		return fmt.Errorf("%w: %v", kv.ErrBackendUnavailable, err)
	}
	return err
}

// Dial connects to the server described by cfg and verifies the connection
// (and credentials) with a PING bounded by cfg.DialTimeout.
func Dial(ctx context.Context, cfg kv.Config) (*Store, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	return ping(ctx, client, timeout)
}

// New creates a new Redis-backed store from a redis:// URL
func New(ctx context.Context, redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return ping(ctx, redis.NewClient(opt), 5*time.Second)
}

// NewFromClient wraps an already configured client without checking it
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func ping(ctx context.Context, client *redis.Client, timeout time.Duration) (*Store, error) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, wrapError(err)
	}

	return &Store{client: client}, nil
}

// String operations

func (s *Store) Set(ctx context.Context, key string, value string) (string, error) {
	res, err := s.client.Set(ctx, key, value, 0).Result()
	return res, wrapError(err)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", kv.ErrNotFound
		}
		return "", wrapError(err)
	}
	return result, nil
}

// List operations

func (s *Store) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	n, err := s.client.LPush(ctx, key, toArgs(values)...).Result()
	return n, wrapError(err)
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapError(err)
	}
	return values, nil
}

// Hash operations

func (s *Store) HSet(ctx context.Context, key string, field string, value string) (int64, error) {
	n, err := s.client.HSet(ctx, key, field, value).Result()
	return n, wrapError(err)
}

func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// Set operations

func (s *Store) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	n, err := s.client.SAdd(ctx, key, toArgs(members)...).Result()
	return n, wrapError(err)
}

func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrapError(err)
	}
	return members, nil
}

// Sorted set operations

func (s *Store) ZAdd(ctx context.Context, key string, members ...kv.ScoredMember) (int64, error) {
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Member}
	}
	n, err := s.client.ZAdd(ctx, key, zs...).Result()
	return n, wrapError(err)
}

func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := s.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapError(err)
	}
	return members, nil
}

// Key operations

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := s.client.Del(ctx, keys...).Result()
	return n, wrapError(err)
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	n, err := s.client.Exists(ctx, keys...).Result()
	return n, wrapError(err)
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	return ok, wrapError(err)
}

// TTL returns the remaining lifetime. go-redis v9 reports the -1/-2 replies
// as raw durations, which line up with kv.TTLNoExpiry and kv.TTLKeyMissing.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, wrapError(err)
	}
	return ttl, nil
}

func (s *Store) FlushAll(ctx context.Context) (string, error) {
	res, err := s.client.FlushAll(ctx).Result()
	return res, wrapError(err)
}

// Ping checks if Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return wrapError(s.client.Ping(ctx).Err())
}

// Close closes the Redis connection pool
func (s *Store) Close() error {
	return s.client.Close()
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
