package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
	"cookingsecret/pkg/metrics"
)

const (
	chatReplayLimit  = 50
	chatHistoryLimit = 100
	chatSessionLimit = 20
)

type ChatService struct {
	uow          domain.UnitOfWork
	provider     domain.ChatProvider
	systemPrompt string
	logger       logger.Logger
}

// NewChatService builds the chat proxy. provider may be nil when no model is
// configured; Send then fails with domain.ErrChatUnavailable.
func NewChatService(uow domain.UnitOfWork, provider domain.ChatProvider, systemPrompt string, logger logger.Logger) domain.ChatService {
	return &ChatService{
		uow:          uow,
		provider:     provider,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Send replays the session history to the provider and stores the exchange.
// Provider failures are not retried.
func (s *ChatService) Send(ctx context.Context, actor *domain.User, sessionID, message string) (*domain.ChatReply, error) {
	if s.provider == nil {
		return nil, domain.ErrChatUnavailable
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidInput
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	repo := s.uow.Repos().Chat
	history, err := repo.History(ctx, actor.ID, sessionID, chatReplayLimit)
	if err != nil {
		return nil, fmt.Errorf("chat history could not be read: %w", err)
	}

	reply, err := s.provider.Send(ctx, s.systemPrompt, history, message)
	if err != nil {
		metrics.RecordChat("error")
		s.logger.ErrorContext(ctx, "Chat provider failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	metrics.RecordChat("ok")

	sent := time.Now().UTC()
	answered := sent.Add(time.Nanosecond)
	err = repo.Append(ctx,
		&domain.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    actor.ID,
			SessionID: sessionID,
			Seq:       sent.UnixNano(),
			Role:      domain.ChatRoleUser,
			Content:   message,
			CreatedAt: sent,
		},
		&domain.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    actor.ID,
			SessionID: sessionID,
			Seq:       answered.UnixNano(),
			Role:      domain.ChatRoleAssistant,
			Content:   reply,
			CreatedAt: answered,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("chat exchange could not be stored: %w", err)
	}

	return &domain.ChatReply{Response: reply, SessionID: sessionID}, nil
}

func (s *ChatService) History(ctx context.Context, actor *domain.User, sessionID string) ([]*domain.ChatMessage, error) {
	return s.uow.Repos().Chat.History(ctx, actor.ID, sessionID, chatHistoryLimit)
}

func (s *ChatService) Sessions(ctx context.Context, actor *domain.User) ([]*domain.ChatSession, error) {
	return s.uow.Repos().Chat.Sessions(ctx, actor.ID, chatSessionLimit)
}

func (s *ChatService) DeleteSession(ctx context.Context, actor *domain.User, sessionID string) (int64, error) {
	return s.uow.Repos().Chat.DeleteSession(ctx, actor.ID, sessionID)
}
