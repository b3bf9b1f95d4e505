// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
)

// StoreFactory creates a fresh, empty Store instance for testing
type StoreFactory func(t *testing.T) kv.Store

type storeTest struct {
	name string
	test func(t *testing.T, store kv.Store)
}

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	groups := []struct {
		name  string
		tests []storeTest
	}{
		{"StringOperations", []storeTest{
			{"SetGet", testSetGet},
			{"SetOverwrites", testSetOverwrites},
			{"GetNonExistent", testGetNonExistent},
		}},
		{"ListOperations", []storeTest{
			{"LPushOrder", testLPushOrder},
			{"LRangeBounds", testLRangeBounds},
			{"LRangeNonExistent", testLRangeNonExistent},
		}},
		{"HashOperations", []storeTest{
			{"HSetInsertUpdate", testHSetInsertUpdate},
			{"HGetAllNonExistent", testHGetAllNonExistent},
		}},
		{"SetOperations", []storeTest{
			{"SAddDedup", testSAddDedup},
			{"SMembersNonExistent", testSMembersNonExistent},
		}},
		{"SortedSetOperations", []storeTest{
			{"ZRangeScoreOrder", testZRangeScoreOrder},
			{"ZAddScoreUpdate", testZAddScoreUpdate},
			{"ZRangeTies", testZRangeTies},
		}},
		{"KeyOperations", []storeTest{
			{"Del", testDel},
			{"Exists", testExists},
			{"FlushAll", testFlushAll},
		}},
		{"TTLOperations", []storeTest{
			{"ExpireAndTTL", testExpireAndTTL},
			{"ExpireImmediately", testExpireImmediately},
			{"ExpireNonExistent", testExpireNonExistent},
			{"TTLSentinels", testTTLSentinels},
			{"SetClearsTTL", testSetClearsTTL},
			{"ExpiredCollectionsEmpty", testExpiredCollectionsEmpty},
		}},
		{"HealthCheck", []storeTest{
			{"Ping", testPing},
		}},
	}

	for _, group := range groups {
		group := group
		t.Run(group.name, func(t *testing.T) {
			for _, tt := range group.tests {
				tt := tt
				t.Run(tt.name, func(t *testing.T) {
					store := factory(t)
					defer store.Close()
					tt.test(t, store)
				})
			}
		})
	}
}

func testSetGet(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:string"
	value := "hello world"

	ack, err := store.Set(ctx, key, value)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ack != "OK" {
		t.Fatalf("Expected OK acknowledgement, got %q", ack)
	}

	result, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result != value {
		t.Fatalf("Expected %q, got %q", value, result)
	}
}

func testSetOverwrites(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:overwrite"

	store.Set(ctx, key, "one")
	store.Set(ctx, key, "two")

	result, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result != "two" {
		t.Fatalf("Expected %q, got %q", "two", result)
	}
}

func testGetNonExistent(t *testing.T, store kv.Store) {
	_, err := store.Get(context.Background(), "test:nonexistent")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func testLPushOrder(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:list"

	n, err := store.LPush(ctx, key, "a")
	if err != nil {
		t.Fatalf("LPush failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected length 1, got %d", n)
	}

	n, err = store.LPush(ctx, key, "b")
	if err != nil {
		t.Fatalf("LPush failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected length 2, got %d", n)
	}

	values, err := store.LRange(ctx, key, 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	assertStrings(t, []string{"b", "a"}, values)
}

func testLRangeBounds(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:list:bounds"

	// LPUSH of several values pushes each to the head in turn
	store.LPush(ctx, key, "c", "b", "a")

	tests := []struct {
		start, stop int64
		expected    []string
	}{
		{0, 0, []string{"a"}},
		{0, 1, []string{"a", "b"}},
		{-2, -1, []string{"b", "c"}},
		{1, 100, []string{"b", "c"}},
		{5, 10, []string{}},
		{2, 1, []string{}},
	}

	for _, tt := range tests {
		values, err := store.LRange(ctx, key, tt.start, tt.stop)
		if err != nil {
			t.Fatalf("LRange(%d, %d) failed: %v", tt.start, tt.stop, err)
		}
		assertStrings(t, tt.expected, values)
	}
}

func testLRangeNonExistent(t *testing.T, store kv.Store) {
	values, err := store.LRange(context.Background(), "test:list:none", 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("Expected empty range, got %v", values)
	}
}

func testHSetInsertUpdate(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:hash"

	added, err := store.HSet(ctx, key, "name", "jack")
	if err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("Expected 1 for new field, got %d", added)
	}

	added, err = store.HSet(ctx, key, "name", "jill")
	if err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("Expected 0 for updated field, got %d", added)
	}

	store.HSet(ctx, key, "age", "10")

	all, err := store.HGetAll(ctx, key)
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(all) != 2 || all["name"] != "jill" || all["age"] != "10" {
		t.Fatalf("Unexpected hash contents: %v", all)
	}
}

func testHGetAllNonExistent(t *testing.T, store kv.Store) {
	all, err := store.HGetAll(context.Background(), "test:hash:none")
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("Expected empty hash, got %v", all)
	}
}

func testSAddDedup(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:set"

	added, err := store.SAdd(ctx, key, "xiaoming")
	if err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("Expected 1 added, got %d", added)
	}

	added, err = store.SAdd(ctx, key, "xiaoming")
	if err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("Expected 0 added for duplicate, got %d", added)
	}

	store.SAdd(ctx, key, "xiaohong")

	members, err := store.SMembers(ctx, key)
	if err != nil {
		t.Fatalf("SMembers failed: %v", err)
	}
	sort.Strings(members)
	assertStrings(t, []string{"xiaohong", "xiaoming"}, members)
}

func testSMembersNonExistent(t *testing.T, store kv.Store) {
	members, err := store.SMembers(context.Background(), "test:set:none")
	if err != nil {
		t.Fatalf("SMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("Expected empty set, got %v", members)
	}
}

func testZRangeScoreOrder(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:zset"

	for _, m := range []kv.ScoredMember{
		{Member: "name", Score: 1},
		{Member: "age", Score: 2},
		{Member: "phone", Score: 4},
		{Member: "email", Score: 3},
	} {
		added, err := store.ZAdd(ctx, key, m)
		if err != nil {
			t.Fatalf("ZAdd failed: %v", err)
		}
		if added != 1 {
			t.Fatalf("Expected 1 added, got %d", added)
		}
	}

	members, err := store.ZRange(ctx, key, 0, 10)
	if err != nil {
		t.Fatalf("ZRange failed: %v", err)
	}
	assertStrings(t, []string{"name", "age", "email", "phone"}, members)

	members, err = store.ZRange(ctx, key, -1, -1)
	if err != nil {
		t.Fatalf("ZRange failed: %v", err)
	}
	assertStrings(t, []string{"phone"}, members)
}

func testZAddScoreUpdate(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:zset:update"

	store.ZAdd(ctx, key, kv.ScoredMember{Member: "a", Score: 1}, kv.ScoredMember{Member: "b", Score: 2})

	added, err := store.ZAdd(ctx, key, kv.ScoredMember{Member: "a", Score: 3})
	if err != nil {
		t.Fatalf("ZAdd failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("Expected 0 for score update, got %d", added)
	}

	members, err := store.ZRange(ctx, key, 0, -1)
	if err != nil {
		t.Fatalf("ZRange failed: %v", err)
	}
	assertStrings(t, []string{"b", "a"}, members)
}

func testZRangeTies(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:zset:ties"

	store.ZAdd(ctx, key,
		kv.ScoredMember{Member: "charlie", Score: 1},
		kv.ScoredMember{Member: "alpha", Score: 1},
		kv.ScoredMember{Member: "bravo", Score: 1},
	)

	members, err := store.ZRange(ctx, key, 0, -1)
	if err != nil {
		t.Fatalf("ZRange failed: %v", err)
	}
	assertStrings(t, []string{"alpha", "bravo", "charlie"}, members)
}

func testDel(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key1, key2 := "test:del1", "test:del2"

	store.Set(ctx, key1, "test")
	store.Set(ctx, key2, "test")

	deleted, err := store.Del(ctx, key1)
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Expected 1 deleted, got %d", deleted)
	}

	deleted, err = store.Del(ctx, key1)
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("Expected 0 deleted for missing key, got %d", deleted)
	}

	if _, err := store.Get(ctx, key2); err != nil {
		t.Fatalf("Expected key2 to still exist, got %v", err)
	}
}

func testExists(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:exists"

	count, err := store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 for non-existent key, got %d", count)
	}

	store.SAdd(ctx, key, "member")

	count, err = store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 for existing key, got %d", count)
	}
}

func testFlushAll(t *testing.T, store kv.Store) {
	ctx := context.Background()

	store.Set(ctx, "test:flush:string", "v")
	store.LPush(ctx, "test:flush:list", "v")
	store.HSet(ctx, "test:flush:hash", "f", "v")
	store.SAdd(ctx, "test:flush:set", "v")
	store.ZAdd(ctx, "test:flush:zset", kv.ScoredMember{Member: "v", Score: 1})

	ack, err := store.FlushAll(ctx)
	if err != nil {
		t.Fatalf("FlushAll failed: %v", err)
	}
	if ack != "OK" {
		t.Fatalf("Expected OK acknowledgement, got %q", ack)
	}

	count, err := store.Exists(ctx,
		"test:flush:string", "test:flush:list", "test:flush:hash", "test:flush:set", "test:flush:zset")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected all keys flushed, %d remain", count)
	}
}

func testExpireAndTTL(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:ttl"

	store.Set(ctx, key, "v")

	ok, err := store.Expire(ctx, key, 100*time.Second)
	if err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected Expire to report success")
	}

	ttl, err := store.TTL(ctx, key)
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 90*time.Second || ttl > 100*time.Second {
		t.Fatalf("Expected TTL close to 100s, got %v", ttl)
	}
}

func testExpireImmediately(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:expire:now"

	store.Set(ctx, key, "v")

	ok, err := store.Expire(ctx, key, 0)
	if err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected Expire to report success")
	}

	if _, err := store.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after immediate expiry, got %v", err)
	}
}

func testExpireNonExistent(t *testing.T, store kv.Store) {
	ok, err := store.Expire(context.Background(), "test:expire:none", 10*time.Second)
	if err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	if ok {
		t.Fatal("Expected Expire on missing key to report false")
	}
}

func testTTLSentinels(t *testing.T, store kv.Store) {
	ctx := context.Background()

	ttl, err := store.TTL(ctx, "test:ttl:none")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != kv.TTLKeyMissing {
		t.Fatalf("Expected TTLKeyMissing, got %v", ttl)
	}

	store.Set(ctx, "test:ttl:persistent", "v")
	ttl, err = store.TTL(ctx, "test:ttl:persistent")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != kv.TTLNoExpiry {
		t.Fatalf("Expected TTLNoExpiry, got %v", ttl)
	}
}

func testSetClearsTTL(t *testing.T, store kv.Store) {
	ctx := context.Background()
	key := "test:ttl:reset"

	store.Set(ctx, key, "v")
	store.Expire(ctx, key, 100*time.Second)
	store.Set(ctx, key, "w")

	ttl, err := store.TTL(ctx, key)
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != kv.TTLNoExpiry {
		t.Fatalf("Expected SET to clear the TTL, got %v", ttl)
	}
}

func testExpiredCollectionsEmpty(t *testing.T, store kv.Store) {
	ctx := context.Background()
	keys := []string{"test:expired:list", "test:expired:hash", "test:expired:set", "test:expired:zset"}

	store.LPush(ctx, keys[0], "a", "b")
	store.HSet(ctx, keys[1], "f", "v")
	store.SAdd(ctx, keys[2], "m")
	store.ZAdd(ctx, keys[3], kv.ScoredMember{Member: "m", Score: 1})

	for _, key := range keys {
		ok, err := store.Expire(ctx, key, time.Second)
		if err != nil {
			t.Fatalf("Expire(%s) failed: %v", key, err)
		}
		if !ok {
			t.Fatalf("Expected Expire(%s) to report success", key)
		}
	}

	time.Sleep(1500 * time.Millisecond)

	count, err := store.Exists(ctx, keys...)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected expired keys to be gone, %d remain", count)
	}

	list, err := store.LRange(ctx, keys[0], 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("Expected empty list after expiry, got %v", list)
	}

	hash, err := store.HGetAll(ctx, keys[1])
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(hash) != 0 {
		t.Fatalf("Expected empty hash after expiry, got %v", hash)
	}

	members, err := store.SMembers(ctx, keys[2])
	if err != nil {
		t.Fatalf("SMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("Expected empty set after expiry, got %v", members)
	}

	ranked, err := store.ZRange(ctx, keys[3], 0, -1)
	if err != nil {
		t.Fatalf("ZRange failed: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("Expected empty sorted set after expiry, got %v", ranked)
	}
}

func testPing(t *testing.T, store kv.Store) {
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func assertStrings(t *testing.T, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("Expected %v, got %v", expected, actual)
		}
	}
}
