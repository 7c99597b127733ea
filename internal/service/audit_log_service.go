package service

import (
	"context"
	"fmt"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type AuditLogService struct {
	repo   domain.AuditLogRepository
	logger logger.Logger
}

func NewAuditLogService(repo domain.AuditLogRepository, logger logger.Logger) domain.AuditLogService {
	return &AuditLogService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AuditLogService) GetEntityLogs(ctx context.Context, actor *domain.User, entityType domain.EntityType, entityID string) ([]*domain.AuditLog, error) {
	if !domain.HasRole(actor, domain.RoleAdmin) {
		return nil, domain.ErrAccessDenied
	}

	logs, err := s.repo.FindByEntityID(ctx, entityType, entityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Audit logs could not be read", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("audit logs could not be read: %w", err)
	}

	return logs, nil
}

func (s *AuditLogService) GetAllLogs(ctx context.Context, actor *domain.User, page, pageSize int) ([]*domain.AuditLog, error) {
	if !domain.HasRole(actor, domain.RoleAdmin) {
		return nil, domain.ErrAccessDenied
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	logs, err := s.repo.FindAll(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Audit logs could not be read", map[string]interface{}{
			"page":      page,
			"page_size": pageSize,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("audit logs could not be read: %w", err)
	}

	return logs, nil
}

// audit records a privileged mutation through the repositories of the
// surrounding transaction, so the entry commits or rolls back with it.
func audit(ctx context.Context, repos domain.Repositories, actor *domain.User, entityType domain.EntityType, entityID string, action domain.ActionType, details string) error {
	err := repos.AuditLogs.Create(ctx, &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actor.ID,
		Details:    details,
	})
	if err != nil {
		return fmt.Errorf("audit log could not be written: %w", err)
	}
	return nil
}
