package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/config"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

func openMemory(t *testing.T) *pkgdb.ConnectionManager {
	t.Helper()
	cm, err := pkgdb.NewConnectionManager(config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    "file::memory:?_foreign_keys=on",
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })
	return cm
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cm := openMemory(t)
	svc := NewMigrationService(cm, logger.Nop())

	require.NoError(t, svc.RunMigrations(ctx))
	require.NoError(t, svc.RunMigrations(ctx))

	applied, err := svc.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, len(migrations))

	ok, err := svc.IsMigrationApplied(ctx, "create_follows_table")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFollowsRejectsSelfFollowAtSchemaLevel(t *testing.T) {
	ctx := context.Background()
	cm := openMemory(t)
	require.NoError(t, NewMigrationService(cm, logger.Nop()).RunMigrations(ctx))

	_, err := cm.DB().ExecContext(ctx, `INSERT INTO users (id, email, username, full_name, password_hash, role, created_at, updated_at)
        VALUES ('u1', 'a@x.io', 'a', 'A', 'h', 'user', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = cm.DB().ExecContext(ctx, `INSERT INTO follows (id, follower_id, following_id, created_at)
        VALUES ('f1', 'u1', 'u1', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
