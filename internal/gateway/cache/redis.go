package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// redisBackend 网络缓存后端
type redisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend 创建 Redis 缓存后端
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewRedisBackend(client redis.UniversalClient) Backend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read redis cache")
	}
	return value, true, nil
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write redis cache")
	}
	return nil
}

func (b *redisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, "failed to delete from redis cache")
	}
	return nil
}

func (b *redisBackend) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "failed to scan redis cache keys")
	}

	if len(keys) == 0 {
		return nil
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "failed to invalidate redis cache prefix")
	}
	return nil
}
