package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/pkg/logger"
)

type mapCache struct {
	data    map[string][]byte
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.failGet {
		return errors.New("connection refused")
	}
	b, ok := m.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapCache) InvalidatePrefix(_ context.Context, prefix string) error {
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *mapCache) Ping(context.Context) error { return nil }

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestReadThroughFetchesOnceThenHits(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(newMapCache(), logger.Nop())

	calls := 0
	fetch := func() (*profile, error) {
		calls++
		return &profile{ID: "u1", Name: "Ana"}, nil
	}

	first, err := ReadThrough(ctx, cm, UserCacheKey("u1"), ShortExpiration, fetch)
	require.NoError(t, err)
	second, err := ReadThrough(ctx, cm, UserCacheKey("u1"), ShortExpiration, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	cm.Invalidate(ctx, UserCacheKey("u1"))
	_, err = ReadThrough(ctx, cm, UserCacheKey("u1"), ShortExpiration, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReadThroughFallsBackOnCacheError(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	c.failGet = true
	cm := NewCacheManager(c, logger.Nop())

	got, err := ReadThrough(ctx, cm, RecipeCacheKey("r1"), ShortExpiration, func() (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestReadThroughDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	cm := NewCacheManager(c, logger.Nop())

	boom := errors.New("boom")
	_, err := ReadThrough(ctx, cm, RecipeCacheKey("r1"), ShortExpiration, func() (*profile, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.data)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "user:id:abc", UserCacheKey("abc"))
	assert.Equal(t, "user:username:ana", UserCacheKeyByUsername("ana"))
	assert.Equal(t, "recipe:id:r1", RecipeCacheKey("r1"))
	assert.True(t, strings.HasPrefix(RecipeCacheKey("r1"), RecipePrefix))
}

func TestInvalidatePrefixDropsOnlyMatchingKeys(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	cm := NewCacheManager(c, logger.Nop())

	require.NoError(t, c.Set(ctx, UserCacheKey("u1"), "a", ShortExpiration))
	require.NoError(t, c.Set(ctx, RecipeCacheKey("r1"), "b", ShortExpiration))

	require.NoError(t, cm.InvalidatePrefix(ctx, UserPrefix))
	assert.NotContains(t, c.data, UserCacheKey("u1"))
	assert.Contains(t, c.data, RecipeCacheKey("r1"))
}

func TestNopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	cm := NewCacheManager(NopCache{}, logger.Nop())

	calls := 0
	for i := 0; i < 2; i++ {
		_, err := ReadThrough(ctx, cm, RecipeCacheKey("r1"), ShortExpiration, func() (string, error) {
			calls++
			return "fresh", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
