package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"cookingsecret/internal/domain"
)

var auditLogColumns = []string{"id", "entity_type", "entity_id", "action", "actor_id", "details", "created_at"}

type AuditLogRepository struct {
	base
}

func NewAuditLogRepository(b base) domain.AuditLogRepository {
	b.entity = "audit_log"
	return &AuditLogRepository{base: b}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = now()

	_, err := r.exec(ctx, "create", r.sb.Insert("audit_logs").Columns(auditLogColumns...).Values(
		log.ID, log.EntityType, log.EntityID, log.Action, log.ActorID, log.Details, log.CreatedAt,
	))
	return err
}

func (r *AuditLogRepository) FindByEntityID(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	err := r.selectAll(ctx, "find_by_entity", &logs, r.sb.Select(auditLogColumns...).
		From("audit_logs").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC"))
	return logs, err
}

func (r *AuditLogRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	err := r.selectAll(ctx, "find_all", &logs, r.sb.Select(auditLogColumns...).
		From("audit_logs").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	return logs, err
}
