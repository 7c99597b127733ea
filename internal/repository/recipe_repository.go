package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
)

var recipeColumns = []string{
	"id", "author_id", "author_username", "author_profile_image", "author_role",
	"title", "description", "image", "ingredients", "steps", "cooking_time_minutes",
	"servings", "difficulty", "category", "tags", "likes_count", "comments_count",
	"saves_count", "is_featured", "is_approved", "is_paid", "price",
	"created_at", "updated_at",
}

type RecipeRepository struct {
	base
}

func NewRecipeRepository(b base) domain.RecipeRepository {
	b.entity = "recipe"
	return &RecipeRepository{base: b}
}

func (r *RecipeRepository) selectRecipes() sq.SelectBuilder {
	return r.sb.Select(recipeColumns...).From("recipes")
}

func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	found, err := r.get(ctx, "find", &recipe, r.selectRecipes().Where(sq.Eq{"id": id}))
	if err != nil || !found {
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Recipe, error) {
	recipes := make([]*domain.Recipe, 0, len(ids))
	if len(ids) == 0 {
		return recipes, nil
	}
	err := r.selectAll(ctx, "find_many", &recipes,
		r.selectRecipes().Where(sq.Eq{"id": ids}).OrderBy("created_at DESC"))
	return recipes, err
}

// List returns approved recipes matching filter. An empty AuthorIDs slice
// with a non-nil value matches nothing.
func (r *RecipeRepository) List(ctx context.Context, filter domain.RecipeFilter, sort domain.RecipeSort) ([]*domain.Recipe, error) {
	q := r.selectRecipes().Where(sq.Eq{"is_approved": true})

	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.AuthorID != "" {
		q = q.Where(sq.Eq{"author_id": filter.AuthorID})
	}
	if filter.AuthorIDs != nil {
		q = q.Where(sq.Eq{"author_id": filter.AuthorIDs})
	}
	if filter.FeaturedOnly {
		q = q.Where(sq.Eq{"is_featured": true})
	}

	switch sort {
	case domain.SortPopular:
		q = q.OrderBy("likes_count DESC", "created_at DESC")
	default:
		q = q.OrderBy("created_at DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Skip > 0 {
		q = q.Offset(uint64(filter.Skip))
	}

	recipes := make([]*domain.Recipe, 0)
	err := r.selectAll(ctx, "list", &recipes, q)
	return recipes, err
}

// jsonPunctuation is the set of characters that frame elements of a JSON
// string array.
const jsonPunctuation = "\"[],\\"

// Search matches query case-insensitively against title, description,
// category and tags. Tags live in a JSON array column, so a query carrying
// JSON punctuation is not matched against them.
func (r *RecipeRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Recipe, error) {
	pattern := containsPattern(query)

	match := sq.Or{
		sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`LOWER(description) LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`LOWER(category) LIKE ? ESCAPE '\'`, pattern),
	}
	if !strings.ContainsAny(query, jsonPunctuation) {
		match = append(match, sq.Expr(`LOWER(tags) LIKE ? ESCAPE '\'`, pattern))
	}

	q := r.selectRecipes().
		Where(sq.Eq{"is_approved": true}).
		Where(match).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	recipes := make([]*domain.Recipe, 0)
	err := r.selectAll(ctx, "search", &recipes, q)
	return recipes, err
}

func (r *RecipeRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("recipes"))
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	_, err := r.exec(ctx, "create", r.sb.Insert("recipes").Columns(recipeColumns...).Values(
		recipe.ID, recipe.AuthorID, recipe.AuthorUsername, recipe.AuthorProfileImage, recipe.AuthorRole,
		recipe.Title, recipe.Description, recipe.Image, recipe.Ingredients, recipe.Steps, recipe.CookingTimeMinutes,
		recipe.Servings, recipe.Difficulty, recipe.Category, recipe.Tags, recipe.LikesCount, recipe.CommentsCount,
		recipe.SavesCount, recipe.IsFeatured, recipe.IsApproved, recipe.IsPaid, recipe.Price,
		recipe.CreatedAt, recipe.UpdatedAt,
	))
	return err
}

// UpdateContent replaces author-controlled fields only.
func (r *RecipeRepository) UpdateContent(ctx context.Context, id string, input domain.RecipeInput, updatedAt time.Time) error {
	n, err := r.exec(ctx, "update", r.sb.Update("recipes").SetMap(map[string]interface{}{
		"title":                input.Title,
		"description":          input.Description,
		"image":                input.Image,
		"ingredients":          input.Ingredients,
		"steps":                input.Steps,
		"cooking_time_minutes": input.CookingTimeMinutes,
		"servings":             input.Servings,
		"difficulty":           input.Difficulty,
		"category":             input.Category,
		"tags":                 input.Tags,
		"is_paid":              input.IsPaid,
		"price":                input.Price,
		"updated_at":           updatedAt,
	}).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	n, err := r.exec(ctx, "delete", r.sb.Delete("recipes").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}

func (r *RecipeRepository) IncrementComments(ctx context.Context, id string, delta int) error {
	return r.adjust(ctx, id, "comments_count", delta)
}

func (r *RecipeRepository) adjust(ctx context.Context, id, column string, delta int) error {
	n, err := r.exec(ctx, "increment_"+column, r.sb.Update("recipes").
		Set(column, sq.Expr(column+" + ?", delta)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecipeNotFound
	}
	return nil
}
