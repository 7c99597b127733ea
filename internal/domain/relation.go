package domain

import (
	"context"
	"time"
)

// RelationKind names a toggleable relation between an actor and a target.
type RelationKind string

const (
	RelationLike   RelationKind = "like"
	RelationSave   RelationKind = "save"
	RelationFollow RelationKind = "follow"
)

type Like struct {
	ID        string    `json:"id" db:"id"`
	RecipeID  string    `json:"recipe_id" db:"recipe_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Save struct {
	ID        string    `json:"id" db:"id"`
	RecipeID  string    `json:"recipe_id" db:"recipe_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Follow struct {
	ID          string    `json:"id" db:"id"`
	FollowerID  string    `json:"follower_id" db:"follower_id"`
	FollowingID string    `json:"following_id" db:"following_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Purchase struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	RecipeID  string    `json:"recipe_id" db:"recipe_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RelationRepository owns the like/save/follow tables and the counters that
// mirror their cardinality.
type RelationRepository interface {
	// Toggle flips the (actor, target) relation and adjusts the mirrored
	// counters. It returns whether the relation is active afterwards.
	Toggle(ctx context.Context, kind RelationKind, actorID, targetID string) (bool, error)
	Exists(ctx context.Context, kind RelationKind, actorID, targetID string) (bool, error)
	// Targets lists target ids the actor relates to.
	Targets(ctx context.Context, kind RelationKind, actorID string, limit int) ([]string, error)
	// Actors lists actor ids relating to the target.
	Actors(ctx context.Context, kind RelationKind, targetID string, limit int) ([]string, error)
	Count(ctx context.Context, kind RelationKind, targetID string) (int, error)
	DeleteByTarget(ctx context.Context, kind RelationKind, targetID string) (int64, error)
}

type PurchaseRepository interface {
	// Create inserts the purchase unless one exists for the same pair and
	// reports whether a row was written.
	Create(ctx context.Context, purchase *Purchase) (bool, error)
	Exists(ctx context.Context, userID, recipeID string) (bool, error)
	RecipeIDs(ctx context.Context, userID string, limit int) ([]string, error)
}
