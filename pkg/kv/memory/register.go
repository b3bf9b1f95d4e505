package memory

import (
	"context"

	"github.com/leafsii/kvkeywords/pkg/kv"
)

// Each Open returns a fresh, empty store: the memory backend has no server
// behind it, so keyspaces are not shared between connections.
func init() {
	kv.RegisterBackend(kv.BackendMemory, func(ctx context.Context, cfg kv.Config) (kv.Store, error) {
		return New(cfg.JanitorInterval), nil
	})
}

// NewStore creates a new in-memory store without a background janitor
func NewStore() kv.Store {
	return New(0)
}
