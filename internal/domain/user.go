package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleChef      Role = "chef"
	RoleUser      Role = "user"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleModerator, RoleChef, RoleUser}

// ParseRole maps a wire value onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleChef, RoleUser:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	FullName       string    `json:"full_name" db:"full_name"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Role           Role      `json:"role" db:"role"`
	Bio            string    `json:"bio" db:"bio"`
	ProfileImage   *string   `json:"profile_image" db:"profile_image"`
	FollowersCount int       `json:"followers_count" db:"followers_count"`
	FollowingCount int       `json:"following_count" db:"following_count"`
	RecipesCount   int       `json:"recipes_count" db:"recipes_count"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// ProfileUpdate carries optional profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName     *string
	Bio          *string
	ProfileImage *string
}

type AdminStats struct {
	UsersCount    int          `json:"users_count"`
	RecipesCount  int          `json:"recipes_count"`
	CommentsCount int          `json:"comments_count"`
	RoleCounts    map[Role]int `json:"role_counts"`
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
	List(ctx context.Context, limit int) ([]*User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	Create(ctx context.Context, user *User) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	UpdateRole(ctx context.Context, id string, role Role) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementRecipes(ctx context.Context, id string, delta int) error
	// LockForSignup serialises registrations until the enclosing
	// transaction ends, so the first-user check sees committed rows only.
	LockForSignup(ctx context.Context) error
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context, actor *User) ([]*User, error)
	UpdateProfile(ctx context.Context, actor *User, update ProfileUpdate) (*User, error)
	UpdateRole(ctx context.Context, actor *User, userID string, role Role) (*User, error)
	ToggleActive(ctx context.Context, actor *User, userID string) (bool, error)
	ToggleFollow(ctx context.Context, actor *User, userID string) (bool, error)
	IsFollowing(ctx context.Context, actor *User, userID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]*User, error)
	Following(ctx context.Context, userID string) ([]*User, error)
	AdminStats(ctx context.Context, actor *User) (*AdminStats, error)
}

type IdentityService interface {
	ResolveIdentity(ctx context.Context, token string) (*User, error)
	RequireRole(user *User, allowed ...Role) error
}
