package redis

import (
	"context"
	"fmt"

	"github.com/leafsii/kvkeywords/pkg/kv"
)

func init() {
	kv.RegisterBackend(kv.BackendRedis, func(ctx context.Context, cfg kv.Config) (kv.Store, error) {
		if cfg.Host == "" {
			return nil, fmt.Errorf("redis host is required when backend is 'redis'")
		}
		store, err := Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}
