// Package state persists prediction history in SQLite or PostgreSQL.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// dialect captures what differs between database engines.
type dialect struct {
	name  string
	goose string
	// positional placeholders are $1, $2, ... instead of ?
	numbered bool
}

var (
	dialectSQLite   = dialect{name: "sqlite", goose: "sqlite"}
	dialectPostgres = dialect{name: "postgres", goose: "postgres", numbered: true}
)

// bind rewrites ? placeholders for the dialect.
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore implements core.Store over database/sql. SQLiteStore and
// PostgresStore differ only in how they connect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

func newSQLStore(d dialect, logger *slog.Logger) sqlStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return sqlStore{dialect: d, logger: logger}
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying connection.
func (s *sqlStore) DB() *sql.DB {
	return s.db
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// SavePrediction inserts p, assigning an ID and timestamp when unset.
func (s *sqlStore) SavePrediction(ctx context.Context, p *core.Prediction) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if p.ID == "" {
		p.ID = generateID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	inputs, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}
	unknown, err := json.Marshal(nonNil(p.UnknownColumns))
	if err != nil {
		return fmt.Errorf("failed to encode unknown columns: %w", err)
	}

	s.logger.Debug("saving prediction", slog.String("id", p.ID), slog.Int("label", p.Label))

	_, err = s.db.ExecContext(ctx, s.dialect.bind(
		`INSERT INTO predictions (id, created_at, label, probability, exceeds, model_name, model_version, inputs, unknown_columns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.CreatedAt.UnixNano(), p.Label, p.Probability, p.Exceeds,
		p.ModelName, p.ModelVersion, string(inputs), string(unknown),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

const selectPrediction = `SELECT id, created_at, label, probability, exceeds, model_name, model_version, inputs, unknown_columns FROM predictions`

// GetPrediction retrieves a prediction by ID.
func (s *sqlStore) GetPrediction(ctx context.Context, id string) (*core.Prediction, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, s.dialect.bind(selectPrediction+` WHERE id = ?`), id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// ListPredictions returns the most recent predictions, newest first.
func (s *sqlStore) ListPredictions(ctx context.Context, limit int) ([]*core.Prediction, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.bind(selectPrediction+` ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return out, nil
}

// CountPredictions returns the number of stored predictions.
func (s *sqlStore) CountPredictions(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (*core.Prediction, error) {
	var (
		p                 core.Prediction
		createdAt         int64
		inputs, unknownJS string
	)
	if err := sc.Scan(&p.ID, &createdAt, &p.Label, &p.Probability, &p.Exceeds,
		&p.ModelName, &p.ModelVersion, &inputs, &unknownJS); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := json.Unmarshal([]byte(inputs), &p.Inputs); err != nil {
		return nil, fmt.Errorf("corrupt inputs for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(unknownJS), &p.UnknownColumns); err != nil {
		return nil, fmt.Errorf("corrupt unknown columns for %s: %w", p.ID, err)
	}
	if len(p.UnknownColumns) == 0 {
		p.UnknownColumns = nil
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
