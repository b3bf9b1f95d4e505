package memory

import (
	"context"
	"testing"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/leafsii/kvkeywords/pkg/kv/kvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) kv.Store {
		return New(0) // Disable janitor for deterministic tests
	}

	kvtest.RunConformanceTests(t, factory)
}

func TestMemoryStoreWithJanitor(t *testing.T) {
	store := New(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	key := "test:janitor"

	_, err := store.Set(ctx, key, "test")
	require.NoError(t, err)
	ok, err := store.Expire(ctx, key, 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = store.Get(ctx, key)
	require.NoError(t, err, "key should exist before its TTL elapses")

	time.Sleep(60 * time.Millisecond)

	store.mu.RLock()
	_, stillStored := store.strings[key]
	store.mu.RUnlock()
	assert.False(t, stillStored, "janitor should have evicted the key")

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemoryStoreWrongType(t *testing.T) {
	store := New(0)
	defer store.Close()
	ctx := context.Background()

	_, err := store.LPush(ctx, "list", "a")
	require.NoError(t, err)

	_, err = store.Get(ctx, "list")
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = store.SAdd(ctx, "list", "a")
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = store.HGetAll(ctx, "list")
	assert.ErrorIs(t, err, ErrWrongType)

	// SET replaces any type
	res, err := store.Set(ctx, "list", "now a string")
	require.NoError(t, err)
	assert.Equal(t, "OK", res)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := New(5 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second Close is a no-op")

	_, err := store.Set(ctx, "k", "v")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.Ping(ctx), ErrClosed)
}

func TestOpenRegistersMemoryBackend(t *testing.T) {
	store, err := kv.Open(context.Background(), kv.Config{Backend: kv.BackendMemory})
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
}

func TestMemoryStoreRangesHideExpiredKeys(t *testing.T) {
	store := New(0)
	defer store.Close()
	ctx := context.Background()

	_, err := store.LPush(ctx, "list", "a", "b")
	require.NoError(t, err)
	_, err = store.ZAdd(ctx, "zset", kv.ScoredMember{Member: "m", Score: 1})
	require.NoError(t, err)

	for _, key := range []string{"list", "zset"} {
		ok, err := store.Expire(ctx, key, 20*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)
	}

	time.Sleep(60 * time.Millisecond)

	count, err := store.Exists(ctx, "list", "zset")
	require.NoError(t, err)
	assert.Zero(t, count)

	list, err := store.LRange(ctx, "list", 0, -1)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	ranked, err := store.ZRange(ctx, "zset", 0, -1)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestOpenStartsJanitor(t *testing.T) {
	opened, err := kv.Open(context.Background(), kv.Config{
		Backend:         kv.BackendMemory,
		JanitorInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer opened.Close()

	store, ok := opened.(*Store)
	require.True(t, ok)
	ctx := context.Background()

	_, err = store.SAdd(ctx, "set", "m")
	require.NoError(t, err)
	_, err = store.Expire(ctx, "set", 20*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	store.mu.RLock()
	_, stillStored := store.sets["set"]
	store.mu.RUnlock()
	assert.False(t, stillStored, "janitor should have evicted the key")
}
