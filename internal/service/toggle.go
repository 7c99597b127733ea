package service

import (
	"context"
	"errors"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
	"cookingsecret/pkg/metrics"
)

// toggleRelation runs one relation toggle in its own transaction. A lost race
// on the natural key is retried once; a second loss surfaces as
// domain.ErrConflict.
func toggleRelation(ctx context.Context, uow domain.UnitOfWork, log logger.Logger, kind domain.RelationKind, actorID, targetID string) (bool, error) {
	var active bool
	attempt := func() error {
		return uow.WithTx(ctx, func(repos domain.Repositories) error {
			var err error
			active, err = repos.Relations.Toggle(ctx, kind, actorID, targetID)
			return err
		})
	}

	err := attempt()
	if errors.Is(err, domain.ErrConflict) {
		metrics.RecordConflict(string(kind))
		log.WarnContext(ctx, "Relation toggle lost a race, retrying", map[string]interface{}{
			"kind":      kind,
			"actor_id":  actorID,
			"target_id": targetID,
		})
		err = attempt()
	}
	if err != nil {
		return false, err
	}

	metrics.RecordToggle(string(kind), active)
	return active, nil
}

// page normalises skip/limit query values.
func page(skip, limit, def, maxLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
