// Package kv defines the narrow key-value store interface consumed by the
// facade, together with a backend registry.
//
// The package covers the Redis data types the keyword library exposes:
// strings, lists, hashes, sets and sorted sets, plus key lifecycle
// operations (expire, TTL, delete, exists, flush).
//
// Example usage:
//
//	store, err := kv.Open(ctx, kv.Config{
//		Backend: kv.BackendRedis,
//		Host:    "127.0.0.1",
//		Port:    6379,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if _, err := store.Set(ctx, "key", "value"); err != nil {
//		log.Fatal(err)
//	}
//
//	value, err := store.Get(ctx, "key")
//	if errors.Is(err, kv.ErrNotFound) {
//		log.Println("Key not found")
//	}
//
// Backends register themselves from their package init, so callers import
// them for side effects:
//
//	import (
//		_ "github.com/leafsii/kvkeywords/pkg/kv/memory"
//		_ "github.com/leafsii/kvkeywords/pkg/kv/redis"
//	)
//
// The in-memory implementation follows Redis semantics closely enough to
// stand in for a server in tests and dry runs. The Redis adapter wraps
// go-redis/v9.
package kv
