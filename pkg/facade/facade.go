package facade

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"go.uber.org/zap"
)

// Dialer opens the underlying store for a connection
type Dialer func(ctx context.Context, cfg kv.Config) (kv.Store, error)

// Recorder receives one measurement per store round-trip. err is nil on
// success.
type Recorder interface {
	RecordOperation(ctx context.Context, op string, duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(context.Context, string, time.Duration, error) {}

// Facade exposes typed key-value operations over a Connection. It holds no
// per-connection state and is safe for concurrent use.
type Facade struct {
	dial     Dialer
	recorder Recorder
	logger   *zap.SugaredLogger
}

// Option configures a Facade
type Option func(*Facade)

// WithDialer replaces kv.Open as the way connections reach their store
func WithDialer(dial Dialer) Option {
	return func(f *Facade) {
		f.dial = dial
	}
}

// WithRecorder attaches an operation metrics recorder
func WithRecorder(r Recorder) Option {
	return func(f *Facade) {
		f.recorder = r
	}
}

// New creates a Facade. A nil logger disables logging.
func New(logger *zap.SugaredLogger, opts ...Option) *Facade {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	f := &Facade{
		dial:     kv.Open,
		recorder: nopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ConnectOptions describes the store session to open
type ConnectOptions struct {
	// Backend defaults to kv.BackendRedis
	Backend kv.Backend
	Host    string
	// Port defaults to 6379
	Port int
	// Keyspace is the logical database index
	Keyspace int
	// Password is optional
	Password    string
	DialTimeout time.Duration
	// JanitorInterval sweeps expired keys out of memory-backend stores.
	// Zero leaves them to lazy expiry on access.
	JanitorInterval time.Duration
}

func (o ConnectOptions) config() kv.Config {
	port := o.Port
	if port == 0 {
		port = kv.DefaultPort
	}
	return kv.Config{
		Backend:         o.Backend,
		Host:            o.Host,
		Port:            port,
		DB:              o.Keyspace,
		Password:        o.Password,
		DialTimeout:     o.DialTimeout,
		JanitorInterval: o.JanitorInterval,
	}
}

// Connection is an open session to one keyspace of one store. It is owned by
// the caller that opened it, who must Close it.
type Connection struct {
	store    kv.Store
	addr     string
	keyspace int
	closed   atomic.Bool
}

// NewConnection wraps an already open store, typically a fake in tests
func NewConnection(store kv.Store, opts ConnectOptions) *Connection {
	return &Connection{
		store:    store,
		addr:     opts.config().Addr(),
		keyspace: opts.Keyspace,
	}
}

// Addr returns the host:port the connection was opened against
func (c *Connection) Addr() string {
	return c.addr
}

// Keyspace returns the logical database index
func (c *Connection) Keyspace() int {
	return c.keyspace
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s/%d", c.addr, c.keyspace)
}

// Close releases the underlying store. Closing twice is a no-op.
func (c *Connection) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.store.Close()
}

func (c *Connection) live() (kv.Store, error) {
	if c == nil || c.store == nil || c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	return c.store, nil
}

// Connect opens a session. Failures are returned as *ConnectionError and
// are not retried.
func (f *Facade) Connect(ctx context.Context, opts ConnectOptions) (*Connection, error) {
	cfg := opts.config()

	store, err := f.dial(ctx, cfg)
	if err != nil {
		f.logger.Errorw("Failed to connect to key-value store",
			"addr", cfg.Addr(),
			"keyspace", cfg.DB,
			"backend", cfg.Backend,
			"error", err,
		)
		return nil, &ConnectionError{Addr: cfg.Addr(), Keyspace: cfg.DB, Err: err}
	}

	conn := NewConnection(store, opts)
	f.logger.Infow("Connected to key-value store",
		"addr", conn.addr,
		"keyspace", conn.keyspace,
		"backend", cfg.Backend,
	)
	return conn, nil
}

// call runs fn against the connection's store, recording and logging the
// outcome. Store failures come back as *OperationError.
func (f *Facade) call(ctx context.Context, conn *Connection, op, key string, fn func(kv.Store) error) error {
	store, err := conn.live()
	if err != nil {
		return err
	}

	start := time.Now()
	err = fn(store)
	f.recorder.RecordOperation(ctx, op, time.Since(start), err)

	if err != nil {
		f.logger.Errorw("Key-value operation failed",
			"op", op,
			"key", key,
			"conn", conn.String(),
			"error", err,
		)
		return &OperationError{Op: op, Key: key, Err: err}
	}
	return nil
}
