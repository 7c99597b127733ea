package service

import (
	"context"
	"fmt"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

// TokenManager issues and validates session tokens.
type TokenManager interface {
	IssueToken(userID string) (string, error)
	ValidateToken(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type IdentityService struct {
	users  domain.UserRepository
	tokens TokenManager
	logger logger.Logger
}

func NewIdentityService(users domain.UserRepository, tokens TokenManager, logger logger.Logger) domain.IdentityService {
	return &IdentityService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// ResolveIdentity maps a bearer token onto its current user. The user is
// always read fresh so role and activation changes apply immediately.
func (s *IdentityService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	userID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("identity could not be resolved: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	return user, nil
}

func (s *IdentityService) RequireRole(user *domain.User, allowed ...domain.Role) error {
	if !domain.HasRole(user, allowed...) {
		return domain.ErrAccessDenied
	}
	return nil
}
