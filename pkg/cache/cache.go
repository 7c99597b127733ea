package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"cookingsecret/internal/config"
	"cookingsecret/pkg/logger"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the key/value surface the read-through decorators rely on.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	logger logger.Logger
	prefix string
}

// NewRedisClient builds a go-redis client from configuration and checks it
// is reachable.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, logger logger.Logger, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

func (r *RedisCache) makeKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	fullKey := r.makeKey(key)
	if err := r.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Cache set failed", map[string]interface{}{
			"key":   fullKey,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	fullKey := r.makeKey(key)
	data, err := r.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		r.logger.ErrorContext(ctx, "Cache get failed", map[string]interface{}{
			"key":   fullKey,
			"error": err.Error(),
		})
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal %s: %w", fullKey, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = r.makeKey(key)
	}

	if err := r.client.Del(ctx, fullKeys...).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Cache delete failed", map[string]interface{}{
			"keys":  len(keys),
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// InvalidatePrefix removes every key under prefix. It walks the keyspace with
// SCAN so a large cache never blocks the server.
func (r *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	pattern := r.makeKey(prefix) + "*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Cache scan failed", map[string]interface{}{
			"pattern": pattern,
			"error":   err.Error(),
		})
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NopCache is used when no Redis host is configured: every read misses and
// every write is dropped.
type NopCache struct{}

func (NopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (NopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (NopCache) Delete(context.Context, ...string) error { return nil }
func (NopCache) InvalidatePrefix(context.Context, string) error { return nil }
func (NopCache) Ping(context.Context) error { return nil }
