package service

import (
	"context"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/cache"
)

// CachedUserService serves profile reads through the cache and drops the
// affected entries after every mutation that changes a profile or its
// counters. Methods it does not override go straight to the wrapped service.
type CachedUserService struct {
	domain.UserService
	cacheManager *cache.CacheManager
}

func NewCachedUserService(userService domain.UserService, cacheManager *cache.CacheManager) domain.UserService {
	return &CachedUserService{
		UserService:  userService,
		cacheManager: cacheManager,
	}
}

func (s *CachedUserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return cache.ReadThrough(ctx, s.cacheManager, cache.UserCacheKey(id), cache.MediumExpiration, func() (*domain.User, error) {
		return s.UserService.GetUserByID(ctx, id)
	})
}

// GetUserByUsername caches the username to id mapping only; usernames never
// change, so the entry needs no invalidation.
func (s *CachedUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, err := cache.ReadThrough(ctx, s.cacheManager, cache.UserCacheKeyByUsername(username), cache.LongExpiration, func() (string, error) {
		user, err := s.UserService.GetUserByUsername(ctx, username)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *CachedUserService) UpdateProfile(ctx context.Context, actor *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.UserService.UpdateProfile(ctx, actor, update)
	s.cacheManager.Invalidate(ctx, cache.UserCacheKey(actor.ID))
	return user, err
}

func (s *CachedUserService) UpdateRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	user, err := s.UserService.UpdateRole(ctx, actor, userID, role)
	s.cacheManager.Invalidate(ctx, cache.UserCacheKey(userID))
	return user, err
}

func (s *CachedUserService) ToggleActive(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	active, err := s.UserService.ToggleActive(ctx, actor, userID)
	s.cacheManager.Invalidate(ctx, cache.UserCacheKey(userID))
	return active, err
}

func (s *CachedUserService) ToggleFollow(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	active, err := s.UserService.ToggleFollow(ctx, actor, userID)
	s.cacheManager.Invalidate(ctx, cache.UserCacheKey(actor.ID), cache.UserCacheKey(userID))
	return active, err
}
