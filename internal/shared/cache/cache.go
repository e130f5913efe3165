package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DashboardStatsKey = "dashboard:stats"
	DepartmentsKey    = "employees:departments"
)

// DirectoryKeys are dropped after any employee mutation.
var DirectoryKeys = []string{DashboardStatsKey, DepartmentsKey}

// setIfGeneration writes KEYS[1] only while the counter in KEYS[2] still
// holds ARGV[1]. A missing counter reads as 0.
const setIfGeneration = `
if (redis.call('GET', KEYS[2]) or '0') == ARGV[1] then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
end
return 0
`

// GenerationKey names the invalidation counter of key.
func GenerationKey(key string) string {
	return key + ":gen"
}

// GetJSON reads key into dst. A miss reports false with a nil error.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dst any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}

// Generation returns how many times key has been invalidated. Read it before
// loading the value that will be cached under key.
func Generation(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	n, err := rdb.Get(ctx, GenerationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetJSONIfGeneration caches v under key unless key was invalidated after
// gen was read. It reports whether the value was written.
func SetJSONIfGeneration(ctx context.Context, rdb *redis.Client, key string, gen int64, v any, ttl time.Duration) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	n, err := rdb.Eval(ctx, setIfGeneration,
		[]string{key, GenerationKey(key)},
		strconv.FormatInt(gen, 10), string(payload), ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the generation of every key and then drops the keys, in
// one round trip. A fill that read an older generation can no longer write
// its value back. Failures are logged and swallowed: the write that
// triggered the invalidation already committed.
func Invalidate(ctx context.Context, rdb *redis.Client, logger *zap.Logger, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	_, err := rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, GenerationKey(k))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		logger.Error("failed to invalidate cache",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}
