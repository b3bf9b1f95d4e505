package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
)

// ErrWrongType mirrors the reply Redis gives when a command targets a key
// holding another data type.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// ErrClosed is returned by every operation after Close
var ErrClosed = errors.New("memory store is closed")

type kind int

const (
	kindNone kind = iota
	kindString
	kindList
	kindHash
	kindSet
	kindZSet
)

// Store is an in-memory implementation of the kv.Store interface
type Store struct {
	mu          sync.RWMutex
	closed      bool
	strings     map[string]string
	hashes      map[string]map[string]string
	sets        map[string]map[string]struct{}
	lists       map[string][]string
	zsets       map[string]map[string]float64
	expirations map[string]time.Time

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
}

// New creates a new in-memory store with optional janitor for TTL cleanup
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}
	s.reset()

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}

	return s
}

func (s *Store) reset() {
	s.strings = make(map[string]string)
	s.hashes = make(map[string]map[string]string)
	s.sets = make(map[string]map[string]struct{})
	s.lists = make(map[string][]string)
	s.zsets = make(map[string]map[string]float64)
	s.expirations = make(map[string]time.Time)
}

// janitor runs background expiration cleanup
func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

// evictExpired removes all expired keys
func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.expirations {
		if !now.Before(expiry) {
			s.deleteKeyUnsafe(key)
		}
	}
}

// isExpired checks if a key has expired (must hold a lock)
func (s *Store) isExpired(key string) bool {
	if expiry, exists := s.expirations[key]; exists {
		return !time.Now().Before(expiry)
	}
	return false
}

// kindOf reports the live type stored at key (must hold a lock)
func (s *Store) kindOf(key string) kind {
	if s.isExpired(key) {
		return kindNone
	}
	if _, ok := s.strings[key]; ok {
		return kindString
	}
	if _, ok := s.lists[key]; ok {
		return kindList
	}
	if _, ok := s.hashes[key]; ok {
		return kindHash
	}
	if _, ok := s.sets[key]; ok {
		return kindSet
	}
	if _, ok := s.zsets[key]; ok {
		return kindZSet
	}
	return kindNone
}

// prepareWrite drops an expired key and checks the type of a live one
// (must hold write lock)
func (s *Store) prepareWrite(key string, want kind) error {
	if s.closed {
		return ErrClosed
	}
	if s.isExpired(key) {
		s.deleteKeyUnsafe(key)
	}
	if k := s.kindOf(key); k != kindNone && k != want {
		return ErrWrongType
	}
	return nil
}

// prepareRead checks the type of a live key (must hold a lock)
func (s *Store) prepareRead(key string, want kind) (kind, error) {
	if s.closed {
		return kindNone, ErrClosed
	}
	k := s.kindOf(key)
	if k != kindNone && k != want {
		return k, ErrWrongType
	}
	return k, nil
}

// deleteKeyUnsafe removes a key from all data structures (must hold write lock)
func (s *Store) deleteKeyUnsafe(key string) {
	delete(s.strings, key)
	delete(s.hashes, key)
	delete(s.sets, key)
	delete(s.lists, key)
	delete(s.zsets, key)
	delete(s.expirations, key)
}

// String operations

// Set overwrites whatever the key held and clears its TTL, like SET.
func (s *Store) Set(ctx context.Context, key string, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	s.deleteKeyUnsafe(key)
	s.strings[key] = value
	return "OK", nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.prepareRead(key, kindString)
	if err != nil {
		return "", err
	}
	if k == kindNone {
		return "", kv.ErrNotFound
	}
	return s.strings[key], nil
}

// List operations

func (s *Store) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareWrite(key, kindList); err != nil {
		return 0, err
	}

	// Each value becomes the new head in turn
	list := make([]string, 0, len(values)+len(s.lists[key]))
	for i := len(values) - 1; i >= 0; i-- {
		list = append(list, values[i])
	}
	s.lists[key] = append(list, s.lists[key]...)

	return int64(len(s.lists[key])), nil
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.prepareRead(key, kindList)
	if err != nil {
		return nil, err
	}
	if k == kindNone {
		return []string{}, nil
	}

	list := s.lists[key]
	from, to, ok := kv.NormalizeRange(start, stop, int64(len(list)))
	if !ok {
		return []string{}, nil
	}

	result := make([]string, to-from+1)
	copy(result, list[from:to+1])
	return result, nil
}

// Hash operations

func (s *Store) HSet(ctx context.Context, key string, field string, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareWrite(key, kindHash); err != nil {
		return 0, err
	}

	hash := s.hashes[key]
	if hash == nil {
		hash = make(map[string]string)
		s.hashes[key] = hash
	}

	var added int64
	if _, exists := hash[field]; !exists {
		added = 1
	}
	hash[field] = value
	return added, nil
}

func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.prepareRead(key, kindHash)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	if k == kindNone {
		return result, nil
	}
	for field, value := range s.hashes[key] {
		result[field] = value
	}
	return result, nil
}

// Set operations

func (s *Store) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareWrite(key, kindSet); err != nil {
		return 0, err
	}

	set := s.sets[key]
	if set == nil {
		set = make(map[string]struct{})
		s.sets[key] = set
	}

	var added int64
	for _, member := range members {
		if _, exists := set[member]; !exists {
			set[member] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.prepareRead(key, kindSet)
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(s.sets[key]))
	if k == kindNone {
		return members, nil
	}
	for member := range s.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

// Sorted set operations

func (s *Store) ZAdd(ctx context.Context, key string, members ...kv.ScoredMember) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareWrite(key, kindZSet); err != nil {
		return 0, err
	}

	zset := s.zsets[key]
	if zset == nil {
		zset = make(map[string]float64)
		s.zsets[key] = zset
	}

	var added int64
	for _, m := range members {
		if _, exists := zset[m.Member]; !exists {
			added++
		}
		zset[m.Member] = m.Score
	}
	return added, nil
}

// ZRange orders by score, then by member bytes for equal scores.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.prepareRead(key, kindZSet)
	if err != nil {
		return nil, err
	}
	if k == kindNone {
		return []string{}, nil
	}

	zset := s.zsets[key]
	ordered := make([]kv.ScoredMember, 0, len(zset))
	for member, score := range zset {
		ordered = append(ordered, kv.ScoredMember{Member: member, Score: score})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score < ordered[j].Score
		}
		return ordered[i].Member < ordered[j].Member
	})

	from, to, ok := kv.NormalizeRange(start, stop, int64(len(ordered)))
	if !ok {
		return []string{}, nil
	}

	result := make([]string, 0, to-from+1)
	for _, m := range ordered[from : to+1] {
		result = append(result, m.Member)
	}
	return result, nil
}

// Key operations

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	var deleted int64
	for _, key := range keys {
		if s.kindOf(key) != kindNone {
			deleted++
		}
		s.deleteKeyUnsafe(key)
	}
	return deleted, nil
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var exists int64
	for _, key := range keys {
		if s.kindOf(key) != kindNone {
			exists++
		}
	}
	return exists, nil
}

// Expire sets a TTL on an existing key. A non-positive ttl deletes the key
// immediately, as EXPIRE key 0 does.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	if s.kindOf(key) == kindNone {
		s.deleteKeyUnsafe(key)
		return false, nil
	}

	if ttl <= 0 {
		s.deleteKeyUnsafe(key)
		return true, nil
	}
	s.expirations[key] = time.Now().Add(ttl)
	return true, nil
}

// TTL reports remaining lifetime rounded down to whole seconds, like the TTL
// command, or one of the kv.TTLNoExpiry / kv.TTLKeyMissing sentinels.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.kindOf(key) == kindNone {
		return kv.TTLKeyMissing, nil
	}

	expiry, hasExpiry := s.expirations[key]
	if !hasExpiry {
		return kv.TTLNoExpiry, nil
	}
	return time.Until(expiry).Truncate(time.Second), nil
}

func (s *Store) FlushAll(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	s.reset()
	return "OK", nil
}

// Ping reports ErrClosed after Close; the in-memory store is otherwise always available
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close stops the background janitor and drops all data
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.reset()
	s.mu.Unlock()

	if s.janitorInterval > 0 {
		close(s.janitorStop)
		<-s.janitorDone
	}
	return nil
}
