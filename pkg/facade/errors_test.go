package facade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:6379: connect: connection refused")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "connection",
			err:      &ConnectionError{Addr: "10.0.0.1:6379", Keyspace: 2, Err: cause},
			expected: "connect to 10.0.0.1:6379 (keyspace 2): dial tcp 10.0.0.1:6379: connect: connection refused",
		},
		{
			name:     "operation with key",
			err:      &OperationError{Op: "get_string", Key: "user:1", Err: errors.New("boom")},
			expected: `get_string "user:1": boom`,
		},
		{
			name:     "operation without key",
			err:      &OperationError{Op: "flush_all", Err: errors.New("boom")},
			expected: "flush_all: boom",
		},
		{
			name:     "key assertion",
			err:      &KeyAssertionError{Key: "BARCODE|1234567890"},
			expected: `key "BARCODE|1234567890" doesn't exist`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
