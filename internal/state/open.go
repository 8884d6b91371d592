package state

import (
	"log/slog"

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// Backend is a store that can be migrated.
type Backend interface {
	core.Store
	Migrate() error
	GetMigrationVersion() (int64, error)
}

// Open opens and migrates the history store at target: a postgres:// URL
// selects PostgreSQL, anything else is a SQLite path.
func Open(target string, logger *slog.Logger) (Backend, error) {
	var b Backend
	if IsPostgresDSN(target) {
		s := NewPostgresStore(logger)
		if err := s.Open(target); err != nil {
			return nil, err
		}
		b = s
	} else {
		s := NewSQLiteStore(logger)
		if err := s.Open(target); err != nil {
			return nil, err
		}
		b = s
	}
	if err := b.Migrate(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}
