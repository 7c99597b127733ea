package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cookingsecret/internal/domain"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

// Store implements domain.UnitOfWork over one connection manager.
type Store struct {
	cm     *pkgdb.ConnectionManager
	logger logger.Logger
	repos  domain.Repositories
}

func NewStore(cm *pkgdb.ConnectionManager, logger logger.Logger) *Store {
	s := &Store{cm: cm, logger: logger}
	s.repos = s.bind(cm.DB())
	return s
}

func (s *Store) bind(q pkgdb.Querier) domain.Repositories {
	b := base{q: q, sb: s.cm.Builder(), driver: s.cm.Driver(), logger: s.logger}
	return domain.Repositories{
		Users:     NewUserRepository(b),
		Recipes:   NewRecipeRepository(b),
		Comments:  NewCommentRepository(b),
		Relations: NewRelationRepository(b),
		Purchases: NewPurchaseRepository(b),
		Chat:      NewChatRepository(b),
		AuditLogs: NewAuditLogRepository(b),
	}
}

// Repos returns repositories bound to the pool. They are meant for reads and
// single-statement writes.
func (s *Store) Repos() domain.Repositories {
	return s.repos
}

func (s *Store) WithTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	return s.cm.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(s.bind(tx))
	})
}
