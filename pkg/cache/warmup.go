package cache

import (
	"context"
	"fmt"
	"time"

	"cookingsecret/internal/concurrent"
	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

// WarmUpManager pre-loads the recipes most likely to be read, and their
// authors, through the caching services. Work runs on the worker pool.
type WarmUpManager struct {
	pool    *concurrent.WorkerPool
	users   domain.UserService
	recipes domain.RecipeService
	logger  logger.Logger
}

// NewWarmUpManager expects the cache-decorated services: a read through
// them is what fills the cache.
func NewWarmUpManager(
	pool *concurrent.WorkerPool,
	users domain.UserService,
	recipes domain.RecipeService,
	logger logger.Logger,
) *WarmUpManager {
	return &WarmUpManager{
		pool:    pool,
		users:   users,
		recipes: recipes,
		logger:  logger,
	}
}

// WarmUpRecipe loads one recipe and its author.
func (w *WarmUpManager) WarmUpRecipe(ctx context.Context, recipeID string) error {
	recipe, err := w.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("recipe %s warm-up: %w", recipeID, err)
	}
	if _, err := w.users.GetUserByID(ctx, recipe.AuthorID); err != nil {
		return fmt.Errorf("author %s warm-up: %w", recipe.AuthorID, err)
	}
	return nil
}

// WarmUpPopular queues a warm-up job for each of the limit most liked
// recipes and returns how many were accepted by the pool.
func (w *WarmUpManager) WarmUpPopular(ctx context.Context, limit int) (int, error) {
	recipes, err := w.recipes.Explore(ctx, 0, limit)
	if err != nil {
		return 0, fmt.Errorf("popular recipes could not be listed: %w", err)
	}

	queued := 0
	for _, recipe := range recipes {
		id := recipe.ID
		ok := w.pool.Submit(concurrent.Job{
			Name: "warmup:recipe:" + id,
			Run: func(ctx context.Context) error {
				return w.WarmUpRecipe(ctx, id)
			},
		})
		if ok {
			queued++
		}
	}

	w.logger.Info("Popular recipes warm-up queued", map[string]interface{}{
		"listed": len(recipes),
		"queued": queued,
	})
	return queued, nil
}

// ScheduledWarmUp repeats WarmUpPopular every interval until ctx is done.
func (w *WarmUpManager) ScheduledWarmUp(ctx context.Context, interval time.Duration, limit int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("Scheduled warm-up started", map[string]interface{}{
		"interval": interval.String(),
		"limit":    limit,
	})

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Scheduled warm-up stopped", map[string]interface{}{})
			return
		case <-ticker.C:
			if _, err := w.WarmUpPopular(ctx, limit); err != nil {
				w.logger.Error("Scheduled warm-up failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
