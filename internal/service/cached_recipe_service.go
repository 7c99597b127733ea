package service

import (
	"context"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/cache"
)

// CachedRecipeService caches single-recipe reads. Listings are not cached.
type CachedRecipeService struct {
	domain.RecipeService
	cacheManager *cache.CacheManager
}

func NewCachedRecipeService(recipeService domain.RecipeService, cacheManager *cache.CacheManager) domain.RecipeService {
	return &CachedRecipeService{
		RecipeService: recipeService,
		cacheManager:  cacheManager,
	}
}

func (s *CachedRecipeService) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return cache.ReadThrough(ctx, s.cacheManager, cache.RecipeCacheKey(id), cache.ShortExpiration, func() (*domain.Recipe, error) {
		return s.RecipeService.GetRecipe(ctx, id)
	})
}

func (s *CachedRecipeService) CreateRecipe(ctx context.Context, actor *domain.User, input domain.RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.RecipeService.CreateRecipe(ctx, actor, input)
	s.cacheManager.Invalidate(ctx, cache.UserCacheKey(actor.ID))
	return recipe, err
}

func (s *CachedRecipeService) UpdateRecipe(ctx context.Context, actor *domain.User, id string, input domain.RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.RecipeService.UpdateRecipe(ctx, actor, id, input)
	s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(id))
	return recipe, err
}

func (s *CachedRecipeService) DeleteRecipe(ctx context.Context, actor *domain.User, id string) error {
	recipe, err := s.RecipeService.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	err = s.RecipeService.DeleteRecipe(ctx, actor, id)
	s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(id), cache.UserCacheKey(recipe.AuthorID))
	return err
}

func (s *CachedRecipeService) ToggleLike(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	active, err := s.RecipeService.ToggleLike(ctx, actor, recipeID)
	s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(recipeID))
	return active, err
}

func (s *CachedRecipeService) ToggleSave(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	active, err := s.RecipeService.ToggleSave(ctx, actor, recipeID)
	s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(recipeID))
	return active, err
}

// CachedCommentService keeps cached recipes' comment counts fresh.
type CachedCommentService struct {
	domain.CommentService
	cacheManager *cache.CacheManager
}

func NewCachedCommentService(commentService domain.CommentService, cacheManager *cache.CacheManager) domain.CommentService {
	return &CachedCommentService{
		CommentService: commentService,
		cacheManager:   cacheManager,
	}
}

func (s *CachedCommentService) CreateComment(ctx context.Context, actor *domain.User, recipeID, text string) (*domain.Comment, error) {
	comment, err := s.CommentService.CreateComment(ctx, actor, recipeID, text)
	s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(recipeID))
	return comment, err
}

func (s *CachedCommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) (*domain.Comment, error) {
	comment, err := s.CommentService.DeleteComment(ctx, actor, commentID)
	if err == nil {
		s.cacheManager.Invalidate(ctx, cache.RecipeCacheKey(comment.RecipeID))
	}
	return comment, err
}
