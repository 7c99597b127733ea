package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookingsecret/pkg/logger"
	"cookingsecret/pkg/metrics"
)

const (
	UserPrefix        = "user"
	UserByIDKey       = "user:id:%s"
	UserByUsernameKey = "user:username:%s"

	RecipePrefix  = "recipe"
	RecipeByIDKey = "recipe:id:%s"
)

const (
	ShortExpiration  = 5 * time.Minute
	MediumExpiration = 30 * time.Minute
	LongExpiration   = 2 * time.Hour
)

// CacheManager applies the read-through pattern on top of a Cache. A cache
// failure never fails the request; the source is consulted instead.
type CacheManager struct {
	cache  Cache
	logger logger.Logger
}

func NewCacheManager(cache Cache, logger logger.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		logger: logger,
	}
}

// ReadThrough fills dest from the cache, or from fetch on a miss and then
// stores the fetched value.
func ReadThrough[T any](ctx context.Context, cm *CacheManager, key string, expiration time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	err := cm.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.RecordCacheHit()
		return cached, nil
	}

	metrics.RecordCacheMiss()
	if !errors.Is(err, ErrCacheMiss) {
		cm.logger.WarnContext(ctx, "Cache read failed, using source", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if err := cm.cache.Set(ctx, key, value, expiration); err != nil {
		cm.logger.WarnContext(ctx, "Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return value, nil
}

// Invalidate drops keys, logging rather than returning failures: the source
// already holds the new state.
func (cm *CacheManager) Invalidate(ctx context.Context, keys ...string) {
	if err := cm.cache.Delete(ctx, keys...); err != nil {
		cm.logger.WarnContext(ctx, "Cache invalidation failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

func (cm *CacheManager) Ping(ctx context.Context) error {
	return cm.cache.Ping(ctx)
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(UserByIDKey, userID)
}

func UserCacheKeyByUsername(username string) string {
	return fmt.Sprintf(UserByUsernameKey, username)
}

func RecipeCacheKey(recipeID string) string {
	return fmt.Sprintf(RecipeByIDKey, recipeID)
}

// InvalidatePrefix drops every key under prefix.
func (cm *CacheManager) InvalidatePrefix(ctx context.Context, prefix string) error {
	if err := cm.cache.InvalidatePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("cache prefix %s could not be invalidated: %w", prefix, err)
	}
	cm.logger.InfoContext(ctx, "Cache prefix invalidated", map[string]interface{}{"prefix": prefix})
	return nil
}
