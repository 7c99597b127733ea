package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

type Migration struct {
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
}

// step is one schema change. Statements run one per Exec so every driver
// accepts them.
type step struct {
	Name       string
	Statements []string
}

type MigrationService struct {
	cm     *pkgdb.ConnectionManager
	logger logger.Logger
}

func NewMigrationService(cm *pkgdb.ConnectionManager, logger logger.Logger) *MigrationService {
	return &MigrationService{
		cm:     cm,
		logger: logger,
	}
}

func (m *MigrationService) InitMigrationTable(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS schema_migrations (
        name TEXT PRIMARY KEY,
        applied_at TIMESTAMP NOT NULL
    )
    `

	if _, err := m.cm.DB().ExecContext(ctx, query); err != nil {
		m.logger.Error("Migration table could not be created", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(ctx context.Context, name string) (bool, error) {
	query, args, err := m.cm.Builder().
		Select("COUNT(*)").
		From("schema_migrations").
		Where("name = ?", name).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := m.cm.DB().GetContext(ctx, &count, query, args...); err != nil {
		m.logger.Error("Migration state could not be read", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

// AppliedMigrations lists recorded migrations in application order.
func (m *MigrationService) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	var out []Migration
	err := m.cm.DB().SelectContext(ctx, &out, "SELECT name, applied_at FROM schema_migrations ORDER BY applied_at, name")
	if err != nil {
		return nil, fmt.Errorf("applied migrations could not be listed: %w", err)
	}
	return out, nil
}

// ApplyMigration runs the statements and records the migration in one
// transaction.
func (m *MigrationService) ApplyMigration(ctx context.Context, s step) error {
	applied, err := m.IsMigrationApplied(ctx, s.Name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration already applied", map[string]interface{}{"name": s.Name})
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": s.Name})

	err = m.cm.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range s.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		query, args, err := m.cm.Builder().
			Insert("schema_migrations").
			Columns("name", "applied_at").
			Values(s.Name, time.Now().UTC()).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		m.logger.Error("Migration rolled back", map[string]interface{}{"name": s.Name, "error": err.Error()})
		return err
	}

	m.logger.Info("Migration applied", map[string]interface{}{"name": s.Name})
	return nil
}

func (m *MigrationService) RunMigrations(ctx context.Context) error {
	m.logger.Info("Running migrations", map[string]interface{}{})

	if err := m.InitMigrationTable(ctx); err != nil {
		return fmt.Errorf("migration table could not be created: %w", err)
	}

	for _, s := range migrations {
		if err := m.ApplyMigration(ctx, s); err != nil {
			return fmt.Errorf("migration %s failed: %w", s.Name, err)
		}
	}

	return nil
}

var migrations = []step{
	{"create_users_table", []string{`
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        username TEXT NOT NULL UNIQUE,
        full_name TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'user',
        bio TEXT NOT NULL DEFAULT '',
        profile_image TEXT,
        followers_count INTEGER NOT NULL DEFAULT 0,
        following_count INTEGER NOT NULL DEFAULT 0,
        recipes_count INTEGER NOT NULL DEFAULT 0,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
		`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,
	}},
	{"create_recipes_table", []string{`
    CREATE TABLE IF NOT EXISTS recipes (
        id TEXT PRIMARY KEY,
        author_id TEXT NOT NULL REFERENCES users (id),
        author_username TEXT NOT NULL,
        author_profile_image TEXT,
        author_role TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        image TEXT NOT NULL DEFAULT '',
        ingredients TEXT NOT NULL,
        steps TEXT NOT NULL,
        cooking_time_minutes INTEGER NOT NULL,
        servings INTEGER NOT NULL,
        difficulty TEXT NOT NULL,
        category TEXT NOT NULL,
        tags TEXT NOT NULL,
        likes_count INTEGER NOT NULL DEFAULT 0,
        comments_count INTEGER NOT NULL DEFAULT 0,
        saves_count INTEGER NOT NULL DEFAULT 0,
        is_featured BOOLEAN NOT NULL DEFAULT FALSE,
        is_approved BOOLEAN NOT NULL DEFAULT TRUE,
        is_paid BOOLEAN NOT NULL DEFAULT FALSE,
        price DOUBLE PRECISION NOT NULL DEFAULT 0,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
		`CREATE INDEX IF NOT EXISTS recipes_author_id_idx ON recipes (author_id)`,
		`CREATE INDEX IF NOT EXISTS recipes_created_at_idx ON recipes (created_at)`,
		`CREATE INDEX IF NOT EXISTS recipes_likes_count_idx ON recipes (likes_count)`,
	}},
	{"create_comments_table", []string{`
    CREATE TABLE IF NOT EXISTS comments (
        id TEXT PRIMARY KEY,
        recipe_id TEXT NOT NULL REFERENCES recipes (id),
        user_id TEXT NOT NULL REFERENCES users (id),
        username TEXT NOT NULL,
        user_profile_image TEXT,
        text TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL
    )`,
		`CREATE INDEX IF NOT EXISTS comments_recipe_id_idx ON comments (recipe_id)`,
	}},
	{"create_likes_table", []string{`
    CREATE TABLE IF NOT EXISTS likes (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users (id),
        recipe_id TEXT NOT NULL REFERENCES recipes (id),
        created_at TIMESTAMP NOT NULL,
        UNIQUE (user_id, recipe_id)
    )`,
		`CREATE INDEX IF NOT EXISTS likes_recipe_id_idx ON likes (recipe_id)`,
	}},
	{"create_saves_table", []string{`
    CREATE TABLE IF NOT EXISTS saves (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users (id),
        recipe_id TEXT NOT NULL REFERENCES recipes (id),
        created_at TIMESTAMP NOT NULL,
        UNIQUE (user_id, recipe_id)
    )`,
		`CREATE INDEX IF NOT EXISTS saves_recipe_id_idx ON saves (recipe_id)`,
	}},
	{"create_follows_table", []string{`
    CREATE TABLE IF NOT EXISTS follows (
        id TEXT PRIMARY KEY,
        follower_id TEXT NOT NULL REFERENCES users (id),
        following_id TEXT NOT NULL REFERENCES users (id),
        created_at TIMESTAMP NOT NULL,
        UNIQUE (follower_id, following_id),
        CHECK (follower_id <> following_id)
    )`,
		`CREATE INDEX IF NOT EXISTS follows_following_id_idx ON follows (following_id)`,
	}},
	{"create_purchases_table", []string{`
    CREATE TABLE IF NOT EXISTS purchases (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users (id),
        recipe_id TEXT NOT NULL,
        amount DOUBLE PRECISION NOT NULL,
        created_at TIMESTAMP NOT NULL,
        UNIQUE (user_id, recipe_id)
    )`,
	}},
	{"create_chat_messages_table", []string{`
    CREATE TABLE IF NOT EXISTS chat_messages (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        session_id TEXT NOT NULL,
        seq BIGINT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL
    )`,
		`CREATE INDEX IF NOT EXISTS chat_messages_session_idx ON chat_messages (user_id, session_id, seq)`,
	}},
	{"create_audit_logs_table", []string{`
    CREATE TABLE IF NOT EXISTS audit_logs (
        id TEXT PRIMARY KEY,
        entity_type TEXT NOT NULL,
        entity_id TEXT NOT NULL,
        action TEXT NOT NULL,
        actor_id TEXT NOT NULL,
        details TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL
    )`,
		`CREATE INDEX IF NOT EXISTS audit_logs_entity_idx ON audit_logs (entity_type, entity_id)`,
		`CREATE INDEX IF NOT EXISTS audit_logs_created_at_idx ON audit_logs (created_at)`,
	}},
}
