package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"cookingsecret/internal/config"
	"cookingsecret/pkg/logger"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// ErrUniqueViolation can be wrapped by callers that detect duplicates themselves.
var ErrUniqueViolation = errors.New("unique constraint violation")

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// ConnectionManager owns the process-wide database handle. It is opened once
// at start-up and closed at shutdown; every repository receives it (or one of
// its transactions) explicitly.
type ConnectionManager struct {
	db     *sqlx.DB
	driver string
	logger logger.Logger
}

func NewConnectionManager(cfg config.DatabaseConfig, logger logger.Logger) (*ConnectionManager, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("database connection could not be opened: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// One connection: SQLite serialises writers, and an in-memory
		// database lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established", map[string]interface{}{
		"driver": cfg.Driver,
		"host":   cfg.Host,
	})

	return &ConnectionManager{db: db, driver: cfg.Driver, logger: logger}, nil
}

// Wrap adopts an already-open handle, mainly for tests.
func Wrap(db *sql.DB, driver string, logger logger.Logger) *ConnectionManager {
	return &ConnectionManager{db: sqlx.NewDb(db, driver), driver: driver, logger: logger}
}

func (cm *ConnectionManager) DB() *sqlx.DB {
	return cm.db
}

func (cm *ConnectionManager) Driver() string {
	return cm.driver
}

// Builder returns a squirrel builder using the driver's placeholder style.
func (cm *ConnectionManager) Builder() sq.StatementBuilderType {
	if cm.driver == "sqlite3" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Question)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// WithTx runs fn in a transaction, committing on nil and rolling back on
// error or panic.
func (cm *ConnectionManager) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := cm.db.BeginTxx(ctx, nil)
	if err != nil {
		cm.logger.ErrorContext(ctx, "Transaction could not be started", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				cm.logger.ErrorContext(ctx, "Transaction rollback failed", map[string]interface{}{"error": rbErr.Error()})
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		cm.logger.ErrorContext(ctx, "Transaction commit failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (cm *ConnectionManager) Ping(ctx context.Context) error {
	return cm.db.PingContext(ctx)
}

func (cm *ConnectionManager) Close() error {
	if err := cm.db.Close(); err != nil {
		cm.logger.Error("Database close failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (cm *ConnectionManager) GetStats() map[string]interface{} {
	stats := cm.db.Stats()
	return map[string]interface{}{
		"driver":           cm.driver,
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration.String(),
	}
}

// IsUniqueViolation recognises duplicate-key errors from every supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	return false
}

// IsTransactionConflict reports errors after which the whole transaction can
// be retried: Postgres serialization failures and deadlocks, and a busy or
// locked SQLite database.
func IsTransactionConflict(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == serializationFailure || pqErr.Code == deadlockDetected
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
	}

	return false
}
