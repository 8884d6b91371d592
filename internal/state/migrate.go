package state

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

func setupGoose(d dialect) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

func migrationsDir(d dialect) string {
	return "migrations/" + d.name
}

// Migrate runs all pending database migrations.
func (s *sqlStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	return migrateWithDB(s.db, s.dialect)
}

// MigrateWithDB runs the SQLite migrations using a raw database connection.
func MigrateWithDB(db *sql.DB) error {
	return migrateWithDB(db, dialectSQLite)
}

func migrateWithDB(db *sql.DB, d dialect) error {
	if err := setupGoose(d); err != nil {
		return err
	}
	if err := goose.Up(db, migrationsDir(d)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// GetMigrationVersion returns the current migration version.
func (s *sqlStore) GetMigrationVersion() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if err := setupGoose(s.dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}
