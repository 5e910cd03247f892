package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errx "energy-analyzer/internal/core/errx"
)

// DefaultPrefix namespaces the analyzer keys inside a shared Redis.
const DefaultPrefix = "energy:cache:"

// Redis is a Store backed by a Redis server.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedis wraps rdb. An empty prefix falls back to DefaultPrefix.
func NewRedis(rdb redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errx.WrapRedis(err)
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// Flush deletes every key under the prefix.
func (r *Redis) Flush(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errx.WrapRedis(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Store = (*Redis)(nil)
