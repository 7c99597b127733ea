package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

// racingRelations loses the first `losses` toggles to a concurrent writer.
type racingRelations struct {
	domain.RelationRepository
	losses int
	calls  int
}

func (r *racingRelations) Toggle(ctx context.Context, kind domain.RelationKind, actorID, targetID string) (bool, error) {
	r.calls++
	if r.calls <= r.losses {
		return false, fmt.Errorf("toggle %s: %w", kind, domain.ErrConflict)
	}
	return true, nil
}

type stubUnitOfWork struct {
	repos domain.Repositories
	txs   int
}

func (u *stubUnitOfWork) Repos() domain.Repositories {
	return u.repos
}

func (u *stubUnitOfWork) WithTx(ctx context.Context, fn func(repos domain.Repositories) error) error {
	u.txs++
	return fn(u.repos)
}

func TestToggleRelationRetriesOnce(t *testing.T) {
	tests := []struct {
		name       string
		losses     int
		wantActive bool
		wantErr    error
	}{
		{"no race", 0, true, nil},
		{"one lost race is retried", 1, true, nil},
		{"second lost race is a conflict", 2, false, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relations := &racingRelations{losses: tt.losses}
			uow := &stubUnitOfWork{repos: domain.Repositories{Relations: relations}}

			active, err := toggleRelation(context.Background(), uow, logger.Nop(), domain.RelationLike, "u1", "r1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Equal(t, domain.KindConflict, domain.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantActive, active)

			wantCalls := tt.losses + 1
			if wantCalls > 2 {
				wantCalls = 2
			}
			assert.Equal(t, wantCalls, relations.calls)
			assert.Equal(t, wantCalls, uow.txs)
		})
	}
}

func TestToggleRelationDoesNotRetryOtherErrors(t *testing.T) {
	relations := &failingRelations{err: domain.ErrRecipeNotFound}
	uow := &stubUnitOfWork{repos: domain.Repositories{Relations: relations}}

	_, err := toggleRelation(context.Background(), uow, logger.Nop(), domain.RelationLike, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	assert.Equal(t, 1, relations.calls)
}

type failingRelations struct {
	domain.RelationRepository
	err   error
	calls int
}

func (r *failingRelations) Toggle(ctx context.Context, kind domain.RelationKind, actorID, targetID string) (bool, error) {
	r.calls++
	return false, r.err
}
