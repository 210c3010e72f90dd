package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces snapshot keys in a shared redis.
const DefaultRedisPrefix = "stokwise:snapshot:"

// Redis stores snapshots as plain string values.
type Redis struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps a redis client. A zero ttl stores snapshots without expiry.
func NewRedis(c *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{c: c, prefix: prefix, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (r *Redis) Save(ctx context.Context, key string, payload []byte) error {
	return r.c.Set(ctx, r.prefix+key, payload, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, r.prefix+key).Err()
}
