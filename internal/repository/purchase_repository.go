package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
)

type PurchaseRepository struct {
	base
}

func NewPurchaseRepository(b base) domain.PurchaseRepository {
	b.entity = "purchase"
	return &PurchaseRepository{base: b}
}

// Create is idempotent on (user_id, recipe_id).
func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) (bool, error) {
	n, err := r.exec(ctx, "create", r.sb.Insert("purchases").
		Columns("id", "user_id", "recipe_id", "amount", "created_at").
		Values(p.ID, p.UserID, p.RecipeID, p.Amount, p.CreatedAt).
		Suffix("ON CONFLICT (user_id, recipe_id) DO NOTHING"))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PurchaseRepository) Exists(ctx context.Context, userID, recipeID string) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("purchases").
		Where(sq.Eq{"user_id": userID, "recipe_id": recipeID}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PurchaseRepository) RecipeIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	ids := make([]string, 0)
	err := r.selectAll(ctx, "recipe_ids", &ids, r.sb.Select("recipe_id").From("purchases").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)))
	return ids, err
}
