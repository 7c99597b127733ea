package domain

import "context"

// Repositories is the set of repositories bound to one store handle or
// one open transaction.
type Repositories struct {
	Users     UserRepository
	Recipes   RecipeRepository
	Comments  CommentRepository
	Relations RelationRepository
	Purchases PurchaseRepository
	Chat      ChatRepository
	AuditLogs AuditLogRepository
}

// UnitOfWork runs multi-step mutations atomically.
type UnitOfWork interface {
	Repos() Repositories
	// WithTx runs fn inside one transaction; any error rolls every step back.
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
