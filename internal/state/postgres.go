package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// PostgresStore implements core.Store using PostgreSQL.
type PostgresStore struct {
	sqlStore
}

var _ core.Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgreSQL store. Call Open before use.
func NewPostgresStore(logger *slog.Logger) *PostgresStore {
	return &PostgresStore{sqlStore: newSQLStore(dialectPostgres, logger)}
}

// NewPostgresStoreWithDB wraps an already opened connection.
func NewPostgresStoreWithDB(db *sql.DB, logger *slog.Logger) *PostgresStore {
	s := NewPostgresStore(logger)
	s.db = db
	return s
}

// IsPostgresDSN reports whether target is a postgres:// connection URL
// rather than a file path.
func IsPostgresDSN(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// Open connects to the database at dsn.
func (s *PostgresStore) Open(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s.db = db
	s.logger.Debug("opened state database", slog.String("dialect", "postgres"))
	return nil
}
