package domain

import (
	"context"
	"time"
)

type Comment struct {
	ID               string    `json:"id" db:"id"`
	RecipeID         string    `json:"recipe_id" db:"recipe_id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Username         string    `json:"username" db:"username"`
	UserProfileImage *string   `json:"user_profile_image" db:"user_profile_image"`
	Text             string    `json:"text" db:"text"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type CommentRepository interface {
	FindByID(ctx context.Context, id string) (*Comment, error)
	FindByRecipe(ctx context.Context, recipeID string, limit int) ([]*Comment, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByRecipe(ctx context.Context, recipeID string) (int64, error)
}

type CommentService interface {
	CreateComment(ctx context.Context, actor *User, recipeID, text string) (*Comment, error)
	ListComments(ctx context.Context, recipeID string) ([]*Comment, error)
	// DeleteComment returns the removed comment.
	DeleteComment(ctx context.Context, actor *User, commentID string) (*Comment, error)
}
