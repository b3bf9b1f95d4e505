package facade

import (
	"errors"
	"fmt"
)

// ErrConnectionClosed is returned when an operation is given a nil or
// closed Connection. It signals a caller bug, not a store failure.
var ErrConnectionClosed = errors.New("connection is closed or was never opened")

// ConnectionError is returned by Connect when the session cannot be
// established: unreachable server, rejected credentials, unknown backend.
type ConnectionError struct {
	Addr     string
	Keyspace int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s (keyspace %d): %v", e.Addr, e.Keyspace, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// OperationError wraps a failure reported by the store during a data
// operation. The store's own message is kept verbatim at the end.
type OperationError struct {
	Op  string
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// KeyAssertionError is returned only by AssertKeyExists for an absent key
type KeyAssertionError struct {
	Key string
}

func (e *KeyAssertionError) Error() string {
	return fmt.Sprintf("key %q doesn't exist", e.Key)
}
