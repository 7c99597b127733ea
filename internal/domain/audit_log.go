package domain

import (
	"context"
	"time"
)

type EntityType string
type ActionType string

const (
	EntityTypeUser    EntityType = "user"
	EntityTypeRecipe  EntityType = "recipe"
	EntityTypeComment EntityType = "comment"

	ActionTypeDelete       ActionType = "delete"
	ActionTypeRoleChange   ActionType = "role_change"
	ActionTypeActiveToggle ActionType = "active_toggle"
)

type AuditLog struct {
	ID         string     `json:"id" db:"id"`
	EntityType EntityType `json:"entity_type" db:"entity_type"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	Action     ActionType `json:"action" db:"action"`
	ActorID    string     `json:"actor_id" db:"actor_id"`
	Details    string     `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *AuditLog) error
	FindByEntityID(ctx context.Context, entityType EntityType, entityID string) ([]*AuditLog, error)
	FindAll(ctx context.Context, limit, offset int) ([]*AuditLog, error)
}

type AuditLogService interface {
	GetEntityLogs(ctx context.Context, actor *User, entityType EntityType, entityID string) ([]*AuditLog, error)
	GetAllLogs(ctx context.Context, actor *User, page, pageSize int) ([]*AuditLog, error)
}
