package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type RecipeService struct {
	uow    domain.UnitOfWork
	logger logger.Logger
}

func NewRecipeService(uow domain.UnitOfWork, logger logger.Logger) domain.RecipeService {
	return &RecipeService{
		uow:    uow,
		logger: logger,
	}
}

// normalize fills nil collections and zeroes the price of free recipes.
func normalize(input domain.RecipeInput) domain.RecipeInput {
	input.Title = strings.TrimSpace(input.Title)
	if input.Ingredients == nil {
		input.Ingredients = domain.Ingredients{}
	}
	if input.Steps == nil {
		input.Steps = domain.Steps{}
	}
	if input.Tags == nil {
		input.Tags = domain.Tags{}
	}
	if !input.IsPaid {
		input.Price = 0
	}
	return input
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actor *domain.User, input domain.RecipeInput) (*domain.Recipe, error) {
	input = normalize(input)
	ts := time.Now().UTC()

	recipe := &domain.Recipe{
		ID:                 uuid.NewString(),
		AuthorID:           actor.ID,
		AuthorUsername:     actor.Username,
		AuthorProfileImage: actor.ProfileImage,
		AuthorRole:         actor.Role,
		Title:              input.Title,
		Description:        input.Description,
		Image:              input.Image,
		Ingredients:        input.Ingredients,
		Steps:              input.Steps,
		CookingTimeMinutes: input.CookingTimeMinutes,
		Servings:           input.Servings,
		Difficulty:         input.Difficulty,
		Category:           input.Category,
		Tags:               input.Tags,
		IsFeatured:         actor.Role == domain.RoleChef,
		IsApproved:         true,
		IsPaid:             input.IsPaid,
		Price:              input.Price,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}

	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Recipes.Create(ctx, recipe); err != nil {
			return err
		}
		return repos.Users.IncrementRecipes(ctx, actor.ID, 1)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Recipe could not be created", map[string]interface{}{
			"author_id": actor.ID,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("recipe could not be created: %w", err)
	}

	return recipe, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return findRecipe(ctx, s.uow.Repos(), id)
}

func findRecipe(ctx context.Context, repos domain.Repositories, id string) (*domain.Recipe, error) {
	recipe, err := repos.Recipes.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recipe could not be read: %w", err)
	}
	if recipe == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return recipe, nil
}

func (s *RecipeService) ListRecipes(ctx context.Context, filter domain.RecipeFilter) ([]*domain.Recipe, error) {
	filter.Skip, filter.Limit = page(filter.Skip, filter.Limit, defaultPageSize, maxPageSize)
	return s.uow.Repos().Recipes.List(ctx, filter, domain.SortNewest)
}

func (s *RecipeService) SearchRecipes(ctx context.Context, query string, limit int) ([]*domain.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	_, limit = page(0, limit, defaultPageSize, maxPageSize)
	return s.uow.Repos().Recipes.Search(ctx, query, limit)
}

// UpdateRecipe replaces content only; approval, feature flag, authorship and
// counters stay as they are.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor *domain.User, id string, input domain.RecipeInput) (*domain.Recipe, error) {
	input = normalize(input)

	var updated *domain.Recipe
	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		recipe, err := findRecipe(ctx, repos, id)
		if err != nil {
			return err
		}
		if !domain.CanMutate(actor, recipe.AuthorID) {
			return domain.ErrAccessDenied
		}

		if err := repos.Recipes.UpdateContent(ctx, id, input, time.Now().UTC()); err != nil {
			return err
		}
		updated, err = findRecipe(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecipe removes the recipe with its comments, likes and saves, and
// decrements the author's recipe count, all in one transaction.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor *domain.User, id string) error {
	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		recipe, err := findRecipe(ctx, repos, id)
		if err != nil {
			return err
		}
		if !domain.CanMutate(actor, recipe.AuthorID) {
			return domain.ErrAccessDenied
		}

		if _, err := repos.Comments.DeleteByRecipe(ctx, id); err != nil {
			return err
		}
		if _, err := repos.Relations.DeleteByTarget(ctx, domain.RelationLike, id); err != nil {
			return err
		}
		if _, err := repos.Relations.DeleteByTarget(ctx, domain.RelationSave, id); err != nil {
			return err
		}
		if err := repos.Recipes.Delete(ctx, id); err != nil {
			return err
		}
		if err := repos.Users.IncrementRecipes(ctx, recipe.AuthorID, -1); err != nil {
			return err
		}

		if actor.ID != recipe.AuthorID {
			return audit(ctx, repos, actor, domain.EntityTypeRecipe, id, domain.ActionTypeDelete,
				fmt.Sprintf("title=%q author_id=%s", recipe.Title, recipe.AuthorID))
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Recipe delete rolled back", map[string]interface{}{
			"recipe_id": id,
			"actor_id":  actor.ID,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}

func (s *RecipeService) ToggleLike(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	return toggleRelation(ctx, s.uow, s.logger, domain.RelationLike, actor.ID, recipeID)
}

func (s *RecipeService) IsLiked(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	return s.uow.Repos().Relations.Exists(ctx, domain.RelationLike, actor.ID, recipeID)
}

func (s *RecipeService) ToggleSave(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	return toggleRelation(ctx, s.uow, s.logger, domain.RelationSave, actor.ID, recipeID)
}

func (s *RecipeService) IsSaved(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	return s.uow.Repos().Relations.Exists(ctx, domain.RelationSave, actor.ID, recipeID)
}

func (s *RecipeService) SavedRecipes(ctx context.Context, actor *domain.User, userID string) ([]*domain.Recipe, error) {
	if actor.ID != userID {
		return nil, domain.ErrAccessDenied
	}
	ids, err := s.uow.Repos().Relations.Targets(ctx, domain.RelationSave, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("saved recipes could not be listed: %w", err)
	}
	return s.uow.Repos().Recipes.FindByIDs(ctx, ids)
}

// Feed lists recipes by the users the actor follows, plus the actor's own.
func (s *RecipeService) Feed(ctx context.Context, actor *domain.User, skip, limit int) ([]*domain.Recipe, error) {
	following, err := s.uow.Repos().Relations.Targets(ctx, domain.RelationFollow, actor.ID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("feed could not be built: %w", err)
	}

	skip, limit = page(skip, limit, defaultPageSize, maxPageSize)
	return s.uow.Repos().Recipes.List(ctx, domain.RecipeFilter{
		Skip:      skip,
		Limit:     limit,
		AuthorIDs: append(following, actor.ID),
	}, domain.SortNewest)
}

func (s *RecipeService) Explore(ctx context.Context, skip, limit int) ([]*domain.Recipe, error) {
	skip, limit = page(skip, limit, defaultPageSize, maxPageSize)
	return s.uow.Repos().Recipes.List(ctx, domain.RecipeFilter{Skip: skip, Limit: limit}, domain.SortPopular)
}

// PurchaseRecipe records a purchase of a paid recipe. It is idempotent and
// reports whether this call created the record.
func (s *RecipeService) PurchaseRecipe(ctx context.Context, actor *domain.User, recipeID string) (bool, error) {
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return false, err
	}
	if !recipe.IsPaid {
		return false, domain.ErrRecipeNotPaid
	}

	created, err := s.uow.Repos().Purchases.Create(ctx, &domain.Purchase{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		RecipeID:  recipeID,
		Amount:    recipe.Price,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("purchase could not be recorded: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "Recipe purchased", map[string]interface{}{
			"recipe_id": recipeID,
			"user_id":   actor.ID,
			"amount":    recipe.Price,
		})
	}
	return created, nil
}

func (s *RecipeService) CheckPurchased(ctx context.Context, actor *domain.User, recipeID string) (*domain.PurchaseStatus, error) {
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	purchased := false
	if recipe.IsPaid && actor.ID != recipe.AuthorID && !actor.Role.IsElevated() {
		purchased, err = s.uow.Repos().Purchases.Exists(ctx, actor.ID, recipeID)
		if err != nil {
			return nil, fmt.Errorf("purchase could not be checked: %w", err)
		}
	}

	return &domain.PurchaseStatus{
		Purchased: domain.IsAccessible(actor, recipe, purchased),
		IsFree:    !recipe.IsPaid,
	}, nil
}

func (s *RecipeService) UserPurchases(ctx context.Context, actor *domain.User, userID string) ([]*domain.Recipe, error) {
	if actor.ID != userID && !domain.HasRole(actor, domain.RoleAdmin) {
		return nil, domain.ErrAccessDenied
	}
	ids, err := s.uow.Repos().Purchases.RecipeIDs(ctx, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("purchases could not be listed: %w", err)
	}
	return s.uow.Repos().Recipes.FindByIDs(ctx, ids)
}
