package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
)

var commentColumns = []string{"id", "recipe_id", "user_id", "username", "user_profile_image", "text", "created_at"}

type CommentRepository struct {
	base
}

func NewCommentRepository(b base) domain.CommentRepository {
	b.entity = "comment"
	return &CommentRepository{base: b}
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	found, err := r.get(ctx, "find", &comment, r.sb.Select(commentColumns...).From("comments").Where(sq.Eq{"id": id}))
	if err != nil || !found {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) FindByRecipe(ctx context.Context, recipeID string, limit int) ([]*domain.Comment, error) {
	comments := make([]*domain.Comment, 0)
	err := r.selectAll(ctx, "list", &comments, r.sb.Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"recipe_id": recipeID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)))
	return comments, err
}

func (r *CommentRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("comments"))
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.exec(ctx, "create", r.sb.Insert("comments").Columns(commentColumns...).
		Values(c.ID, c.RecipeID, c.UserID, c.Username, c.UserProfileImage, c.Text, c.CreatedAt))
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	n, err := r.exec(ctx, "delete", r.sb.Delete("comments").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByRecipe(ctx context.Context, recipeID string) (int64, error) {
	return r.exec(ctx, "delete_by_recipe", r.sb.Delete("comments").Where(sq.Eq{"recipe_id": recipeID}))
}
