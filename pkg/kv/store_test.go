package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name        string
		start, stop int64
		n           int64
		from, to    int64
		ok          bool
	}{
		{"whole list", 0, -1, 3, 0, 2, true},
		{"tail pair", -2, -1, 3, 1, 2, true},
		{"stop clamped", 1, 100, 3, 1, 2, true},
		{"start clamped", -100, 0, 3, 0, 0, true},
		{"start past end", 3, 5, 3, 0, 0, false},
		{"inverted", 2, 1, 3, 0, 0, false},
		{"empty collection", 0, -1, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := NormalizeRange(tt.start, tt.stop, tt.n)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.from, from)
				assert.Equal(t, tt.to, to)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "etcd"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenAppliesDefaults(t *testing.T) {
	var got Config
	RegisterBackend("capture", func(ctx context.Context, cfg Config) (Store, error) {
		got = cfg
		return nil, nil
	})

	_, err := Open(context.Background(), Config{Backend: "capture", Host: "localhost"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, got.Port)
	assert.NotZero(t, got.DialTimeout)
	assert.Equal(t, "localhost:6379", got.Addr())
}
