package facade

import (
	"context"
	"time"

	"github.com/leafsii/kvkeywords/pkg/kv"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of kv.Store for failure paths
type MockStore struct {
	mock.Mock
}

var _ kv.Store = (*MockStore)(nil)

func (m *MockStore) Set(ctx context.Context, key string, value string) (string, error) {
	args := m.Called(ctx, key, value)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	args := m.Called(ctx, key, values)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	args := m.Called(ctx, key, start, stop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) HSet(ctx context.Context, key string, field string, value string) (int64, error) {
	args := m.Called(ctx, key, field, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockStore) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	args := m.Called(ctx, key, members)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) ZAdd(ctx context.Context, key string, members ...kv.ScoredMember) (int64, error) {
	args := m.Called(ctx, key, members)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	args := m.Called(ctx, key, start, stop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Del(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Exists(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockStore) FlushAll(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

type recordedOp struct {
	op  string
	err error
}

// fakeRecorder collects RecordOperation calls
type fakeRecorder struct {
	ops []recordedOp
}

func (r *fakeRecorder) RecordOperation(ctx context.Context, op string, duration time.Duration, err error) {
	r.ops = append(r.ops, recordedOp{op: op, err: err})
}
