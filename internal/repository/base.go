package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
	"cookingsecret/pkg/metrics"
)

// base carries what every repository needs: a handle (the pool or an open
// transaction), a dialect-aware statement builder and the logger.
type base struct {
	q      pkgdb.Querier
	sb     sq.StatementBuilderType
	driver string
	logger logger.Logger
	entity string
}

func (b *base) get(ctx context.Context, op string, dest interface{}, query sq.Sqlizer) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordDatabaseOperation(op, b.entity, time.Since(start)) }()

	stmt, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("%s %s: build query: %w", op, b.entity, err)
	}

	if err := b.q.GetContext(ctx, dest, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		b.logger.ErrorContext(ctx, "Query failed", map[string]interface{}{
			"operation": op,
			"entity":    b.entity,
			"error":     err.Error(),
		})
		return false, fmt.Errorf("%s %s: %w", op, b.entity, err)
	}
	return true, nil
}

func (b *base) selectAll(ctx context.Context, op string, dest interface{}, query sq.Sqlizer) error {
	start := time.Now()
	defer func() { metrics.RecordDatabaseOperation(op, b.entity, time.Since(start)) }()

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s %s: build query: %w", op, b.entity, err)
	}

	if err := b.q.SelectContext(ctx, dest, stmt, args...); err != nil {
		b.logger.ErrorContext(ctx, "Query failed", map[string]interface{}{
			"operation": op,
			"entity":    b.entity,
			"error":     err.Error(),
		})
		return fmt.Errorf("%s %s: %w", op, b.entity, err)
	}
	return nil
}

// exec runs a statement and returns the affected row count. Unique
// violations, deadlocks and serialization failures surface as
// domain.ErrConflict.
func (b *base) exec(ctx context.Context, op string, query sq.Sqlizer) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDatabaseOperation(op, b.entity, time.Since(start)) }()

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s %s: build query: %w", op, b.entity, err)
	}

	res, err := b.q.ExecContext(ctx, stmt, args...)
	if err != nil {
		if pkgdb.IsUniqueViolation(err) || pkgdb.IsTransactionConflict(err) {
			return 0, fmt.Errorf("%s %s: %w", op, b.entity, domain.ErrConflict)
		}
		b.logger.ErrorContext(ctx, "Statement failed", map[string]interface{}{
			"operation": op,
			"entity":    b.entity,
			"error":     err.Error(),
		})
		return 0, fmt.Errorf("%s %s: %w", op, b.entity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %s: rows affected: %w", op, b.entity, err)
	}
	return n, nil
}

func (b *base) count(ctx context.Context, query sq.SelectBuilder) (int, error) {
	var n int
	if _, err := b.get(ctx, "count", &n, query); err != nil {
		return 0, err
	}
	return n, nil
}

func now() time.Time {
	return time.Now().UTC()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
