package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

const maxListed = 1000

type UserService struct {
	uow       domain.UnitOfWork
	passwords PasswordHasher
	tokens    TokenManager
	logger    logger.Logger
}

func NewUserService(
	uow domain.UnitOfWork,
	passwords PasswordHasher,
	tokens TokenManager,
	logger logger.Logger,
) domain.UserService {
	return &UserService{
		uow:       uow,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates an account. The first account ever created becomes admin;
// the count is taken under the signup lock inside the insert transaction.
func (s *UserService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Password could not be hashed", map[string]interface{}{"error": err.Error()})
		return nil, "", fmt.Errorf("user could not be registered: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	err = s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Users.LockForSignup(ctx); err != nil {
			return err
		}

		existing, err := repos.Users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}

		existing, err = repos.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrUsernameTaken
		}

		count, err := repos.Users.Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			user.Role = domain.RoleAdmin
		}

		return repos.Users.Create(ctx, user)
	})
	if errors.Is(err, domain.ErrConflict) {
		err = s.takenError(ctx, email, username)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("token could not be issued: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

// takenError names which natural key a concurrent registration claimed.
// A conflict that claimed neither is passed through.
func (s *UserService) takenError(ctx context.Context, email, username string) error {
	existing, err := s.uow.Repos().Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}
	existing, err = s.uow.Repos().Users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrUsernameTaken
	}
	return domain.ErrConflict
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.uow.Repos().Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("login failed: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	ok, err := s.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "Stored password hash is unreadable", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return nil, "", domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", domain.ErrAccountDeactivated
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("token could not be issued: %w", err)
	}
	return user, token, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.uow.Repos().Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user could not be read: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.uow.Repos().Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user could not be read: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if !domain.HasRole(actor, domain.RoleAdmin, domain.RoleModerator) {
		return nil, domain.ErrAccessDenied
	}
	users, err := s.uow.Repos().Users.List(ctx, maxListed)
	if err != nil {
		return nil, fmt.Errorf("users could not be listed: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
	if update.FullName == nil && update.Bio == nil && update.ProfileImage == nil {
		return s.GetUserByID(ctx, actor.ID)
	}
	if err := s.uow.Repos().Users.UpdateProfile(ctx, actor.ID, update); err != nil {
		return nil, fmt.Errorf("profile could not be updated: %w", err)
	}
	return s.GetUserByID(ctx, actor.ID)
}

func (s *UserService) UpdateRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if !domain.HasRole(actor, domain.RoleAdmin) {
		return nil, domain.ErrAccessDenied
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		target, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrUserNotFound
		}

		if err := repos.Users.UpdateRole(ctx, userID, role); err != nil {
			return err
		}
		if err := audit(ctx, repos, actor, domain.EntityTypeUser, userID, domain.ActionTypeRoleChange,
			fmt.Sprintf("%s -> %s", target.Role, role)); err != nil {
			return err
		}

		updated, err = repos.Users.FindByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User role changed", map[string]interface{}{
		"user_id":  userID,
		"role":     role,
		"actor_id": actor.ID,
	})
	return updated, nil
}

func (s *UserService) ToggleActive(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	if !domain.HasRole(actor, domain.RoleAdmin) {
		return false, domain.ErrAccessDenied
	}

	var active bool
	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		target, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrUserNotFound
		}

		active = !target.IsActive
		if err := repos.Users.SetActive(ctx, userID, active); err != nil {
			return err
		}
		return audit(ctx, repos, actor, domain.EntityTypeUser, userID, domain.ActionTypeActiveToggle,
			fmt.Sprintf("is_active=%t", active))
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

func (s *UserService) ToggleFollow(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	if actor.ID == userID {
		return false, domain.ErrSelfFollow
	}
	return toggleRelation(ctx, s.uow, s.logger, domain.RelationFollow, actor.ID, userID)
}

func (s *UserService) IsFollowing(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	return s.uow.Repos().Relations.Exists(ctx, domain.RelationFollow, actor.ID, userID)
}

func (s *UserService) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	ids, err := s.uow.Repos().Relations.Actors(ctx, domain.RelationFollow, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("followers could not be listed: %w", err)
	}
	return s.uow.Repos().Users.FindByIDs(ctx, ids)
}

func (s *UserService) Following(ctx context.Context, userID string) ([]*domain.User, error) {
	ids, err := s.uow.Repos().Relations.Targets(ctx, domain.RelationFollow, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("following could not be listed: %w", err)
	}
	return s.uow.Repos().Users.FindByIDs(ctx, ids)
}

func (s *UserService) AdminStats(ctx context.Context, actor *domain.User) (*domain.AdminStats, error) {
	if !domain.HasRole(actor, domain.RoleAdmin) {
		return nil, domain.ErrAccessDenied
	}

	repos := s.uow.Repos()
	stats := &domain.AdminStats{RoleCounts: make(map[domain.Role]int, len(domain.Roles))}

	var err error
	if stats.UsersCount, err = repos.Users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.RecipesCount, err = repos.Recipes.Count(ctx); err != nil {
		return nil, err
	}
	if stats.CommentsCount, err = repos.Comments.Count(ctx); err != nil {
		return nil, err
	}
	for _, role := range domain.Roles {
		n, err := repos.Users.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		stats.RoleCounts[role] = n
	}
	return stats, nil
}
