package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/config"
	"cookingsecret/pkg/logger"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("insert: %w", ErrUniqueViolation), true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, false},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq fk", &pq.Error{Code: "23503"}, false},
		{"pgx unique", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"}), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsTransactionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pq deadlock", &pq.Error{Code: "40P01"}, true},
		{"pq serialization", fmt.Errorf("update: %w", &pq.Error{Code: "40001"}), true},
		{"pq unique", &pq.Error{Code: "23505"}, false},
		{"pgx deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransactionConflict(tt.err))
		})
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cm := Wrap(db, "postgres", logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = cm.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE users SET bio = 'x'")
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = cm.WithTx(context.Background(), func(tx *sqlx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuilderPlaceholders(t *testing.T) {
	sqlite := &ConnectionManager{driver: "sqlite3"}
	query, _, err := sqlite.Builder().Select("id").From("users").Where("id = ?", "u1").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = ?", query)

	pg := &ConnectionManager{driver: "postgres"}
	query, _, err = pg.Builder().Select("id").From("users").Where("id = ?", "u1").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = $1", query)
}

func TestNewConnectionManagerSQLite(t *testing.T) {
	cm, err := NewConnectionManager(config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    "file::memory:",
	}, logger.Nop())
	require.NoError(t, err)
	defer cm.Close()

	require.NoError(t, cm.Ping(context.Background()))
	assert.Equal(t, "sqlite3", cm.GetStats()["driver"])
}
