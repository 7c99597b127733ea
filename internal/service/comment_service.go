package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type CommentService struct {
	uow    domain.UnitOfWork
	logger logger.Logger
}

func NewCommentService(uow domain.UnitOfWork, logger logger.Logger) domain.CommentService {
	return &CommentService{
		uow:    uow,
		logger: logger,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, actor *domain.User, recipeID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	comment := &domain.Comment{
		ID:               uuid.NewString(),
		RecipeID:         recipeID,
		UserID:           actor.ID,
		Username:         actor.Username,
		UserProfileImage: actor.ProfileImage,
		Text:             text,
		CreatedAt:        time.Now().UTC(),
	}

	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := findRecipe(ctx, repos, recipeID); err != nil {
			return err
		}
		if err := repos.Comments.Create(ctx, comment); err != nil {
			return err
		}
		return repos.Recipes.IncrementComments(ctx, recipeID, 1)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, recipeID string) ([]*domain.Comment, error) {
	comments, err := s.uow.Repos().Comments.FindByRecipe(ctx, recipeID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("comments could not be listed: %w", err)
	}
	return comments, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) (*domain.Comment, error) {
	var comment *domain.Comment
	err := s.uow.WithTx(ctx, func(repos domain.Repositories) error {
		var err error
		comment, err = repos.Comments.FindByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment == nil {
			return domain.ErrCommentNotFound
		}
		if !domain.CanMutate(actor, comment.UserID) {
			return domain.ErrAccessDenied
		}

		if err := repos.Comments.Delete(ctx, commentID); err != nil {
			return err
		}
		if err := repos.Recipes.IncrementComments(ctx, comment.RecipeID, -1); err != nil {
			return err
		}

		if actor.ID != comment.UserID {
			return audit(ctx, repos, actor, domain.EntityTypeComment, commentID, domain.ActionTypeDelete,
				fmt.Sprintf("recipe_id=%s author_id=%s", comment.RecipeID, comment.UserID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
