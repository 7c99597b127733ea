package repository

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"cookingsecret/internal/domain"
)

// counter is a denormalized count mirroring a relation table.
type counter struct {
	table  string
	column string
	// onActor selects the actor id instead of the target id as the row key.
	onActor bool
}

type relationTable struct {
	table    string
	actor    string
	target   string
	counters []counter
	notFound error
}

var relationTables = map[domain.RelationKind]relationTable{
	domain.RelationLike: {
		table:    "likes",
		actor:    "user_id",
		target:   "recipe_id",
		counters: []counter{{table: "recipes", column: "likes_count"}},
		notFound: domain.ErrRecipeNotFound,
	},
	domain.RelationSave: {
		table:    "saves",
		actor:    "user_id",
		target:   "recipe_id",
		counters: []counter{{table: "recipes", column: "saves_count"}},
		notFound: domain.ErrRecipeNotFound,
	},
	domain.RelationFollow: {
		table:  "follows",
		actor:  "follower_id",
		target: "following_id",
		counters: []counter{
			{table: "users", column: "following_count", onActor: true},
			{table: "users", column: "followers_count"},
		},
		notFound: domain.ErrUserNotFound,
	},
}

type RelationRepository struct {
	base
}

func NewRelationRepository(b base) domain.RelationRepository {
	b.entity = "relation"
	return &RelationRepository{base: b}
}

func lookup(kind domain.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation kind %q", kind)
	}
	return t, nil
}

// Toggle must run inside a transaction. It deletes the pair if present,
// otherwise inserts it, and moves every mirrored counter by the same step.
// A zero-row insert means a concurrent toggle already created the pair and
// is reported as domain.ErrConflict.
func (r *RelationRepository) Toggle(ctx context.Context, kind domain.RelationKind, actorID, targetID string) (bool, error) {
	t, err := lookup(kind)
	if err != nil {
		return false, err
	}
	if kind == domain.RelationFollow && actorID == targetID {
		return false, domain.ErrSelfFollow
	}

	deleted, err := r.exec(ctx, "toggle_delete", r.sb.Delete(t.table).
		Where(sq.Eq{t.actor: actorID, t.target: targetID}))
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		if err := r.adjust(ctx, t, actorID, targetID, -1); err != nil {
			return false, err
		}
		return false, nil
	}

	// Counters first: a missing target is detected before the insert can
	// trip a foreign key.
	if err := r.adjust(ctx, t, actorID, targetID, 1); err != nil {
		return false, err
	}

	inserted, err := r.exec(ctx, "toggle_insert", r.sb.Insert(t.table).
		Columns("id", t.actor, t.target, "created_at").
		Values(uuid.NewString(), actorID, targetID, now()).
		Suffix(fmt.Sprintf("ON CONFLICT (%s, %s) DO NOTHING", t.actor, t.target)))
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		return false, fmt.Errorf("toggle %s: %w", kind, domain.ErrConflict)
	}
	return true, nil
}

// adjust updates counter rows in ascending id order so that two toggles
// touching the same pair of rows (A follows B while B follows A) always lock
// them in the same order.
func (r *RelationRepository) adjust(ctx context.Context, t relationTable, actorID, targetID string, delta int) error {
	type step struct {
		c  counter
		id string
	}
	steps := make([]step, 0, len(t.counters))
	for _, c := range t.counters {
		id := targetID
		if c.onActor {
			id = actorID
		}
		steps = append(steps, step{c: c, id: id})
	}
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].c.table != steps[j].c.table {
			return steps[i].c.table < steps[j].c.table
		}
		return steps[i].id < steps[j].id
	})

	for _, s := range steps {
		n, err := r.exec(ctx, "adjust_"+s.c.column, r.sb.Update(s.c.table).
			Set(s.c.column, sq.Expr(s.c.column+" + ?", delta)).
			Where(sq.Eq{"id": s.id}))
		if err != nil {
			return err
		}
		if n == 0 {
			if s.c.onActor {
				return domain.ErrUserNotFound
			}
			return t.notFound
		}
	}
	return nil
}

func (r *RelationRepository) Exists(ctx context.Context, kind domain.RelationKind, actorID, targetID string) (bool, error) {
	t, err := lookup(kind)
	if err != nil {
		return false, err
	}
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From(t.table).
		Where(sq.Eq{t.actor: actorID, t.target: targetID}))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RelationRepository) Targets(ctx context.Context, kind domain.RelationKind, actorID string, limit int) ([]string, error) {
	t, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err = r.selectAll(ctx, "targets", &ids, r.sb.Select(t.target).From(t.table).
		Where(sq.Eq{t.actor: actorID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)))
	return ids, err
}

func (r *RelationRepository) Actors(ctx context.Context, kind domain.RelationKind, targetID string, limit int) ([]string, error) {
	t, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err = r.selectAll(ctx, "actors", &ids, r.sb.Select(t.actor).From(t.table).
		Where(sq.Eq{t.target: targetID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)))
	return ids, err
}

func (r *RelationRepository) Count(ctx context.Context, kind domain.RelationKind, targetID string) (int, error) {
	t, err := lookup(kind)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, r.sb.Select("COUNT(*)").From(t.table).Where(sq.Eq{t.target: targetID}))
}

// DeleteByTarget removes every pair pointing at target without touching
// counters; callers deleting the target itself use it.
func (r *RelationRepository) DeleteByTarget(ctx context.Context, kind domain.RelationKind, targetID string) (int64, error) {
	t, err := lookup(kind)
	if err != nil {
		return 0, err
	}
	return r.exec(ctx, "delete_by_target", r.sb.Delete(t.table).Where(sq.Eq{t.target: targetID}))
}
