package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
)

var userColumns = []string{
	"id", "email", "username", "full_name", "password_hash", "role", "bio",
	"profile_image", "followers_count", "following_count", "recipes_count",
	"is_active", "created_at", "updated_at",
}

type UserRepository struct {
	base
}

func NewUserRepository(b base) domain.UserRepository {
	b.entity = "user"
	return &UserRepository{base: b}
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq) (*domain.User, error) {
	var user domain.User
	found, err := r.get(ctx, "find", &user, r.sb.Select(userColumns...).From("users").Where(where))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	err := r.selectAll(ctx, "find_many", &users,
		r.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": ids}).OrderBy("username"))
	return users, err
}

func (r *UserRepository) List(ctx context.Context, limit int) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	err := r.selectAll(ctx, "list", &users,
		r.sb.Select(userColumns...).From("users").OrderBy("created_at").Limit(uint64(limit)))
	return users, err
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("users"))
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("users").Where(sq.Eq{"role": role}))
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	_, err := r.exec(ctx, "create", r.sb.Insert("users").Columns(userColumns...).Values(
		user.ID, user.Email, user.Username, user.FullName, user.PasswordHash, user.Role, user.Bio,
		user.ProfileImage, user.FollowersCount, user.FollowingCount, user.RecipesCount,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	))
	return err
}

func (r *UserRepository) update(ctx context.Context, op, id string, set map[string]interface{}) error {
	set["updated_at"] = now()
	n, err := r.exec(ctx, op, r.sb.Update("users").SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error {
	set := map[string]interface{}{}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.ProfileImage != nil {
		set["profile_image"] = *update.ProfileImage
	}
	return r.update(ctx, "update_profile", id, set)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.update(ctx, "update_role", id, map[string]interface{}{"role": role})
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, "set_active", id, map[string]interface{}{"is_active": active})
}

func (r *UserRepository) IncrementRecipes(ctx context.Context, id string, delta int) error {
	n, err := r.exec(ctx, "increment_recipes", r.sb.Update("users").
		Set("recipes_count", sq.Expr("recipes_count + ?", delta)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// LockForSignup takes a table lock that conflicts with itself but not with
// readers. SQLite already admits a single writer, so it is a no-op there.
func (r *UserRepository) LockForSignup(ctx context.Context) error {
	if r.driver == "sqlite3" {
		return nil
	}
	_, err := r.exec(ctx, "lock_for_signup", sq.Expr("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE"))
	return err
}
