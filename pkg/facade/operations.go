package facade

import (
	"context"
	"errors"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
)

// TimeToLive sentinels. They are returned as-is rather than divided into
// minutes, so they cannot be mistaken for a remaining lifetime.
const (
	// TTLNoExpiry means the key exists and never expires
	TTLNoExpiry float64 = -1
	// TTLKeyMissing means the key does not exist
	TTLKeyMissing float64 = -2
)

// String operations

// SetString stores value at key, replacing anything there, and returns the
// store's acknowledgement unchanged.
func (f *Facade) SetString(ctx context.Context, conn *Connection, key, value string) (string, error) {
	var ack string
	err := f.call(ctx, conn, "set_string", key, func(s kv.Store) (err error) {
		ack, err = s.Set(ctx, key, value)
		return err
	})
	return ack, err
}

// GetString returns the value at key. ok is false when the key is absent;
// absence is not an error.
func (f *Facade) GetString(ctx context.Context, conn *Connection, key string) (value string, ok bool, err error) {
	err = f.call(ctx, conn, "get_string", key, func(s kv.Store) error {
		v, err := s.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, ok = v, true
		return nil
	})
	return value, ok, err
}

// List operations

// PushList pushes value onto the head of the list and returns its new length
func (f *Facade) PushList(ctx context.Context, conn *Connection, key, value string) (int64, error) {
	var n int64
	err := f.call(ctx, conn, "push_list", key, func(s kv.Store) (err error) {
		n, err = s.LPush(ctx, key, value)
		return err
	})
	return n, err
}

// RangeList returns list elements start..end inclusive. Negative indices
// count from the tail; a missing key yields an empty slice.
func (f *Facade) RangeList(ctx context.Context, conn *Connection, key string, start, end int64) ([]string, error) {
	var values []string
	err := f.call(ctx, conn, "range_list", key, func(s kv.Store) (err error) {
		values, err = s.LRange(ctx, key, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(values), nil
}

// Hash operations

// SetHashField returns 1 when field was created and 0 when it was updated
func (f *Facade) SetHashField(ctx context.Context, conn *Connection, key, field, value string) (int64, error) {
	var n int64
	err := f.call(ctx, conn, "set_hash_field", key, func(s kv.Store) (err error) {
		n, err = s.HSet(ctx, key, field, value)
		return err
	})
	return n, err
}

// GetAllHash returns every field of the hash, empty when the key is absent
func (f *Facade) GetAllHash(ctx context.Context, conn *Connection, key string) (map[string]string, error) {
	var fields map[string]string
	err := f.call(ctx, conn, "get_all_hash", key, func(s kv.Store) (err error) {
		fields, err = s.HGetAll(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

// Set operations

// AddSetMember returns 1 when member was added and 0 when already present
func (f *Facade) AddSetMember(ctx context.Context, conn *Connection, key, member string) (int64, error) {
	var n int64
	err := f.call(ctx, conn, "add_set_member", key, func(s kv.Store) (err error) {
		n, err = s.SAdd(ctx, key, member)
		return err
	})
	return n, err
}

// GetSetMembers returns the members in no particular order
func (f *Facade) GetSetMembers(ctx context.Context, conn *Connection, key string) ([]string, error) {
	var members []string
	err := f.call(ctx, conn, "get_set_members", key, func(s kv.Store) (err error) {
		members, err = s.SMembers(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(members), nil
}

// Sorted set operations

// AddScoredMember returns 1 when member was added and 0 when only its score
// changed.
func (f *Facade) AddScoredMember(ctx context.Context, conn *Connection, key, member string, score float64) (int64, error) {
	var n int64
	err := f.call(ctx, conn, "add_scored_member", key, func(s kv.Store) (err error) {
		n, err = s.ZAdd(ctx, key, kv.ScoredMember{Member: member, Score: score})
		return err
	})
	return n, err
}

// RangeScoredMembers returns members start..end inclusive in ascending score
// order, equal scores ordered by member.
func (f *Facade) RangeScoredMembers(ctx context.Context, conn *Connection, key string, start, end int64) ([]string, error) {
	var members []string
	err := f.call(ctx, conn, "range_scored_members", key, func(s kv.Store) (err error) {
		members, err = s.ZRange(ctx, key, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(members), nil
}

// Key lifecycle

// Expire sets the key's time to live. A ttl of zero or less expires the key
// at once. It reports false when the key does not exist.
func (f *Facade) Expire(ctx context.Context, conn *Connection, key string, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	var ok bool
	err := f.call(ctx, conn, "expire", key, func(s kv.Store) (err error) {
		ok, err = s.Expire(ctx, key, ttl)
		return err
	})
	return ok, err
}

// TimeToLive returns the key's remaining lifetime in minutes, or
// TTLNoExpiry / TTLKeyMissing.
func (f *Facade) TimeToLive(ctx context.Context, conn *Connection, key string) (float64, error) {
	var ttl time.Duration
	err := f.call(ctx, conn, "time_to_live", key, func(s kv.Store) (err error) {
		ttl, err = s.TTL(ctx, key)
		return err
	})
	if err != nil {
		return 0, err
	}

	switch ttl {
	case kv.TTLNoExpiry:
		return TTLNoExpiry, nil
	case kv.TTLKeyMissing:
		return TTLKeyMissing, nil
	}
	return ttl.Seconds() / 60, nil
}

// Delete returns 1 when the key was removed and 0 when it did not exist
func (f *Facade) Delete(ctx context.Context, conn *Connection, key string) (int64, error) {
	var n int64
	err := f.call(ctx, conn, "delete", key, func(s kv.Store) (err error) {
		n, err = s.Del(ctx, key)
		return err
	})
	return n, err
}

// FlushAll irreversibly removes every key in every keyspace of the store.
// Nothing in this package calls it implicitly.
func (f *Facade) FlushAll(ctx context.Context, conn *Connection) (string, error) {
	if _, err := conn.live(); err != nil {
		return "", err
	}
	f.logger.Warnw("Flushing all keys", "conn", conn.String())

	var ack string
	err := f.call(ctx, conn, "flush_all", "", func(s kv.Store) (err error) {
		ack, err = s.FlushAll(ctx)
		return err
	})
	return ack, err
}

// AssertKeyExists fails with *KeyAssertionError when key is absent. Use
// GetString to branch on absence instead of failing.
func (f *Facade) AssertKeyExists(ctx context.Context, conn *Connection, key string) error {
	var count int64
	err := f.call(ctx, conn, "key_exists", key, func(s kv.Store) (err error) {
		count, err = s.Exists(ctx, key)
		return err
	})
	if err != nil {
		return err
	}
	if count == 0 {
		f.logger.Errorw("Key doesn't exist", "key", key, "conn", conn.String())
		return &KeyAssertionError{Key: key}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
