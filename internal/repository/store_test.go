package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/config"
	"cookingsecret/internal/database"
	"cookingsecret/internal/domain"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cm, err := pkgdb.NewConnectionManager(config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    "file::memory:?_foreign_keys=on",
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })

	require.NoError(t, database.NewMigrationService(cm, logger.Nop()).RunMigrations(context.Background()))
	return NewStore(cm, logger.Nop())
}

func seedUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		FullName:     username,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, s.Repos().Users.Create(context.Background(), u))
	return u
}

func seedRecipe(t *testing.T, s *Store, author *domain.User, title string) *domain.Recipe {
	t.Helper()
	ts := now()
	r := &domain.Recipe{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		AuthorRole:     author.Role,
		Title:          title,
		Description:    "A " + title,
		Ingredients:    domain.Ingredients{{Name: "salt", Amount: "1", Unit: "tsp"}},
		Steps:          domain.Steps{{StepNumber: 1, Instruction: "mix"}},
		Servings:       2,
		Difficulty:     "easy",
		Category:       "Dinner",
		Tags:           domain.Tags{"quick"},
		IsApproved:     true,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	require.NoError(t, s.Repos().Recipes.Create(context.Background(), r))
	return r
}

func toggle(t *testing.T, s *Store, kind domain.RelationKind, actor, target string) (bool, error) {
	t.Helper()
	var active bool
	err := s.WithTx(context.Background(), func(repos domain.Repositories) error {
		var err error
		active, err = repos.Relations.Toggle(context.Background(), kind, actor, target)
		return err
	})
	return active, err
}

func TestWithTxRollsBackEveryStep(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	author := seedUser(t, s, "ana")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(repos domain.Repositories) error {
		require.NoError(t, repos.Users.IncrementRecipes(ctx, author.ID, 1))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Repos().Users.FindByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RecipesCount)
}

func TestToggleReportsConflictOnZeroRowInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(pkgdb.Wrap(db, "postgres", logger.Nop()), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM likes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE recipes SET likes_count`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO likes .* ON CONFLICT \(user_id, recipe_id\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = toggle(t, s, domain.RelationLike, "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleClassifiesDriverUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(pkgdb.Wrap(db, "postgres", logger.Nop()), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM follows`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE users SET following_count`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET followers_count`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO follows`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err = toggle(t, s, domain.RelationFollow, "u1", "u2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowLocksUserRowsInIDOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(pkgdb.Wrap(db, "postgres", logger.Nop()), logger.Nop())

	// "u2" follows "u1": the target row sorts first, so followers_count is
	// updated before following_count. The reverse toggle uses the same order.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM follows`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET followers_count`).WithArgs(-1, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET following_count`).WithArgs(-1, "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM follows`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE users SET following_count`).WithArgs(1, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET followers_count`).WithArgs(1, "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO follows`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	active, err := toggle(t, s, domain.RelationFollow, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = toggle(t, s, domain.RelationFollow, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleClassifiesDeadlockAsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(pkgdb.Wrap(db, "postgres", logger.Nop()), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM follows`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE users SET following_count`).WillReturnError(&pq.Error{Code: "40P01"})
	mock.ExpectRollback()

	_, err = toggle(t, s, domain.RelationFollow, "u1", "u2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockForSignupOnPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(pkgdb.Wrap(db, "pgx", logger.Nop()), logger.Nop())

	mock.ExpectBegin()
	mock.ExpectExec(`LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = s.WithTx(context.Background(), func(repos domain.Repositories) error {
		return repos.Users.LockForSignup(context.Background())
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockForSignupIsNoOpOnSQLite(t *testing.T) {
	s := newTestStore(t)
	err := s.WithTx(context.Background(), func(repos domain.Repositories) error {
		return repos.Users.LockForSignup(context.Background())
	})
	assert.NoError(t, err)
}
