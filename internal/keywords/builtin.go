package keywords

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leafsii/kvkeywords/pkg/facade"
	"github.com/spf13/cast"
)

func builtinKeywords() []Keyword {
	return []Keyword{
		{
			Name: ConnectKeyword,
			Args: []string{"redis_host", "redis_port=6379", "db=0", "redis_password="},
			Doc:  "Connect to the Redis server and return a connection handle for the other keywords.",
		},
		{
			Name: "Set To Redis String",
			Args: []string{"key", "data"},
			Doc:  "Set a string value, overwriting any previous value. Returns the server acknowledgement.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.SetString(ctx, conn, args[0], args[1])
			},
		},
		{
			Name: "Get From Redis String",
			Args: []string{"key"},
			Doc:  "Get a string value. Returns None when the key does not exist.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				value, ok, err := f.GetString(ctx, conn, args[0])
				if err != nil || !ok {
					return nil, err
				}
				return value, nil
			},
		},
		{
			Name: "Set To Redis List",
			Args: []string{"objects", "data"},
			Doc:  "Push data onto the head of a list. Returns the new list length.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.PushList(ctx, conn, args[0], args[1])
			},
		},
		{
			Name: "Get From Redis List",
			Args: []string{"objects", "start", "end"},
			Doc:  "Get list elements from start to end inclusive. Negative indices count from the tail.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				start, end, err := toRange("Get From Redis List", args[1], args[2])
				if err != nil {
					return nil, err
				}
				return f.RangeList(ctx, conn, args[0], start, end)
			},
		},
		{
			Name: "Set To Redis Hash",
			Args: []string{"objects", "key", "data"},
			Doc:  "Set a hash field. Returns 1 for a new field and 0 for an update.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.SetHashField(ctx, conn, args[0], args[1], args[2])
			},
		},
		{
			Name: "Get From Redis Hash",
			Args: []string{"objects"},
			Doc:  "Get every field of a hash as a dictionary.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.GetAllHash(ctx, conn, args[0])
			},
		},
		{
			Name: "Set To Redis Set",
			Args: []string{"objects", "data"},
			Doc:  "Add a set member. Returns 1 when added and 0 when already present.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.AddSetMember(ctx, conn, args[0], args[1])
			},
		},
		{
			Name: "Get From Redis Set",
			Args: []string{"objects"},
			Doc:  "Get the members of a set, in no particular order.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.GetSetMembers(ctx, conn, args[0])
			},
		},
		{
			Name: "Set To Redis Sorted Set",
			Args: []string{"objects", "data", "score"},
			Doc:  "Add a sorted-set member with a score. Returns 1 when added and 0 when the score was updated.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				score, err := cast.ToFloat64E(args[2])
				if err != nil {
					return nil, &ArgumentError{Keyword: "Set To Redis Sorted Set", Msg: fmt.Sprintf("score %q is not a number", args[2])}
				}
				return f.AddScoredMember(ctx, conn, args[0], args[1], score)
			},
		},
		{
			Name: "Get From Redis Sorted Set",
			Args: []string{"objects", "start", "end"},
			Doc:  "Get sorted-set members from start to end inclusive, ordered by ascending score.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				start, end, err := toRange("Get From Redis Sorted Set", args[1], args[2])
				if err != nil {
					return nil, err
				}
				return f.RangeScoredMembers(ctx, conn, args[0], start, end)
			},
		},
		{
			Name: "Expire Data From Redis",
			Args: []string{"key", "expire_time=0"},
			Doc:  "Expire a key after expire_time seconds. The default of 0 expires it now.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				seconds, err := parseInt(args[1])
				if err != nil {
					return nil, &ArgumentError{Keyword: "Expire Data From Redis", Msg: fmt.Sprintf("expire_time %q is not an integer", args[1])}
				}
				if seconds > maxExpireSeconds {
					return nil, &ArgumentError{Keyword: "Expire Data From Redis", Msg: fmt.Sprintf("expire_time %q is out of range", args[1])}
				}
				if seconds < 0 {
					seconds = 0
				}
				return f.Expire(ctx, conn, args[0], time.Duration(seconds)*time.Second)
			},
		},
		{
			Name: "Get Time To Live In Redis",
			Args: []string{"key"},
			Doc:  "Return the remaining time to live in minutes, -1 when the key never expires and -2 when it does not exist.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.TimeToLive(ctx, conn, args[0])
			},
		},
		{
			Name: "Delete From Redis",
			Args: []string{"key"},
			Doc:  "Delete a key. Returns 1 when removed and 0 when it did not exist.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.Delete(ctx, conn, args[0])
			},
		},
		{
			Name: "Redis Key Should Be Exist",
			Args: []string{"key"},
			Doc:  "Fail when the key does not exist.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return nil, f.AssertKeyExists(ctx, conn, args[0])
			},
		},
		{
			Name: "Flush All",
			Doc:  "Delete every key in every keyspace of the server. Irreversible.",
			run: func(ctx context.Context, f *facade.Facade, conn *facade.Connection, args []string) (any, error) {
				return f.FlushAll(ctx, conn)
			},
		},
	}
}

// maxExpireSeconds is the longest TTL a time.Duration can hold
const maxExpireSeconds = math.MaxInt64 / int64(time.Second)

// parseInt reads a decimal integer. Leading zeros do not switch to octal.
func parseInt(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func toInt(kw *Keyword, name, value string) (int, error) {
	n, err := parseInt(value)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, &ArgumentError{Keyword: kw.Name, Msg: fmt.Sprintf("%s %q is not an integer", name, value)}
	}
	return int(n), nil
}

func toRange(keyword, start, end string) (int64, int64, error) {
	from, err := parseInt(start)
	if err != nil {
		return 0, 0, &ArgumentError{Keyword: keyword, Msg: fmt.Sprintf("start %q is not an integer", start)}
	}
	to, err := parseInt(end)
	if err != nil {
		return 0, 0, &ArgumentError{Keyword: keyword, Msg: fmt.Sprintf("end %q is not an integer", end)}
	}
	return from, to, nil
}
