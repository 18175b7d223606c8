package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jeffMauritius/scrapper/internal/model"
)

// RedisRegistry records claimed identity keys in one Redis set per kind.
type RedisRegistry struct {
	rdb *redis.Client
	set string
}

func NewRedisRegistry(ctx context.Context, redisURL string, kind model.Kind) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisRegistry{rdb: rdb, set: "scrapper:keys:" + kind.Collection()}, nil
}

// Claim adds key to the set and reports whether this caller added it.
func (r *RedisRegistry) Claim(ctx context.Context, key model.Key) (bool, error) {
	n, err := r.rdb.SAdd(ctx, r.set, key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return n == 1, nil
}

func (r *RedisRegistry) Release(ctx context.Context, key model.Key) error {
	return r.rdb.SRem(ctx, r.set, key.String()).Err()
}

// Reset forgets every claimed key of this kind.
func (r *RedisRegistry) Reset(ctx context.Context) error {
	return r.rdb.Del(ctx, r.set).Err()
}

func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}
