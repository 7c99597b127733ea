package domain

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Ingredient struct {
	Name   string `json:"name" validate:"required"`
	Amount string `json:"amount" validate:"required"`
	Unit   string `json:"unit"`
}

type CookingStep struct {
	StepNumber      int    `json:"step_number" validate:"min=1"`
	Instruction     string `json:"instruction" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

type Ingredients []Ingredient

type Steps []CookingStep

type Tags []string

func (i Ingredients) Value() (driver.Value, error) { return jsonValue(i) }
func (i *Ingredients) Scan(src interface{}) error  { return jsonScan(src, i) }
func (s Steps) Value() (driver.Value, error)       { return jsonValue(s) }
func (s *Steps) Scan(src interface{}) error        { return jsonScan(src, s) }
func (t Tags) Value() (driver.Value, error)        { return jsonValue(t) }
func (t *Tags) Scan(src interface{}) error         { return jsonScan(src, t) }

// jsonValue stores text unescaped so LIKE searches see what the user typed.
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}

type Recipe struct {
	ID                 string      `json:"id" db:"id"`
	AuthorID           string      `json:"author_id" db:"author_id"`
	AuthorUsername     string      `json:"author_username" db:"author_username"`
	AuthorProfileImage *string     `json:"author_profile_image" db:"author_profile_image"`
	AuthorRole         Role        `json:"author_role" db:"author_role"`
	Title              string      `json:"title" db:"title"`
	Description        string      `json:"description" db:"description"`
	Image              string      `json:"image" db:"image"`
	Ingredients        Ingredients `json:"ingredients" db:"ingredients"`
	Steps              Steps       `json:"steps" db:"steps"`
	CookingTimeMinutes int         `json:"cooking_time_minutes" db:"cooking_time_minutes"`
	Servings           int         `json:"servings" db:"servings"`
	Difficulty         string      `json:"difficulty" db:"difficulty"`
	Category           string      `json:"category" db:"category"`
	Tags               Tags        `json:"tags" db:"tags"`
	LikesCount         int         `json:"likes_count" db:"likes_count"`
	CommentsCount      int         `json:"comments_count" db:"comments_count"`
	SavesCount         int         `json:"saves_count" db:"saves_count"`
	IsFeatured         bool        `json:"is_featured" db:"is_featured"`
	IsApproved         bool        `json:"is_approved" db:"is_approved"`
	IsPaid             bool        `json:"is_paid" db:"is_paid"`
	Price              float64     `json:"price" db:"price"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// RecipeInput is the author-controlled content of a recipe.
type RecipeInput struct {
	Title              string
	Description        string
	Image              string
	Ingredients        Ingredients
	Steps              Steps
	CookingTimeMinutes int
	Servings           int
	Difficulty         string
	Category           string
	Tags               Tags
	IsPaid             bool
	Price              float64
}

type RecipeFilter struct {
	Skip         int
	Limit        int
	Category     string
	AuthorID     string
	AuthorIDs    []string
	FeaturedOnly bool
}

// RecipeSort selects the ordering of a recipe listing.
type RecipeSort int

const (
	SortNewest RecipeSort = iota
	SortPopular
)

var Categories = []string{
	"Breakfast", "Lunch", "Dinner", "Dessert", "Appetizer",
	"Salad", "Soup", "Snack", "Beverage", "Side Dish",
	"Vegan", "Vegetarian", "Seafood", "Meat", "Pasta",
	"Asian", "Italian", "Mexican", "Indian", "Mediterranean",
}

type PurchaseStatus struct {
	Purchased bool `json:"purchased"`
	IsFree    bool `json:"is_free"`
}

type RecipeRepository interface {
	FindByID(ctx context.Context, id string) (*Recipe, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Recipe, error)
	List(ctx context.Context, filter RecipeFilter, sort RecipeSort) ([]*Recipe, error)
	Search(ctx context.Context, query string, limit int) ([]*Recipe, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, recipe *Recipe) error
	UpdateContent(ctx context.Context, id string, input RecipeInput, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	IncrementComments(ctx context.Context, id string, delta int) error
}

type RecipeService interface {
	CreateRecipe(ctx context.Context, actor *User, input RecipeInput) (*Recipe, error)
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]*Recipe, error)
	SearchRecipes(ctx context.Context, query string, limit int) ([]*Recipe, error)
	UpdateRecipe(ctx context.Context, actor *User, id string, input RecipeInput) (*Recipe, error)
	DeleteRecipe(ctx context.Context, actor *User, id string) error

	ToggleLike(ctx context.Context, actor *User, recipeID string) (bool, error)
	IsLiked(ctx context.Context, actor *User, recipeID string) (bool, error)
	ToggleSave(ctx context.Context, actor *User, recipeID string) (bool, error)
	IsSaved(ctx context.Context, actor *User, recipeID string) (bool, error)
	SavedRecipes(ctx context.Context, actor *User, userID string) ([]*Recipe, error)

	Feed(ctx context.Context, actor *User, skip, limit int) ([]*Recipe, error)
	Explore(ctx context.Context, skip, limit int) ([]*Recipe, error)

	PurchaseRecipe(ctx context.Context, actor *User, recipeID string) (bool, error)
	CheckPurchased(ctx context.Context, actor *User, recipeID string) (*PurchaseStatus, error)
	UserPurchases(ctx context.Context, actor *User, userID string) ([]*Recipe, error)
}
