package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"emotebot/pkg/cache"
)

// JSONCache is the subset of cache.Cache the redis backend needs.
type JSONCache interface {
	Key(parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisBackend keeps each document as one JSON string key with no expiry.
type RedisBackend struct {
	cache JSONCache
}

func NewRedisBackend(c JSONCache) *RedisBackend {
	return &RedisBackend{cache: c}
}

func (r *RedisBackend) key(name string) string {
	return r.cache.Key("snapshot", name)
}

func (r *RedisBackend) Load(ctx context.Context, name string, dest any) error {
	err := r.cache.GetJSON(ctx, r.key(name), dest)
	if errors.Is(err, cache.ErrMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s from redis: %w", name, err)
	}
	return nil
}

func (r *RedisBackend) Save(ctx context.Context, name string, v any) error {
	if err := r.cache.SetJSON(ctx, r.key(name), v, 0); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", name, err)
	}
	return nil
}
