package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/testutil"
)

func TestDialect_Bind(t *testing.T) {
	q := "SELECT a FROM t WHERE id = ? AND x > ? LIMIT ?"

	assert.Equal(t, q, dialectSQLite.bind(q))
	assert.Equal(t, "SELECT a FROM t WHERE id = $1 AND x > $2 LIMIT $3", dialectPostgres.bind(q))
	assert.Equal(t, "SELECT 1", dialectPostgres.bind("SELECT 1"))
}

func TestIsPostgresDSN(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"postgres://user@localhost/incomecast", true},
		{"postgresql://localhost:5432/db?sslmode=disable", true},
		{".incomecast/state.db", false},
		{MemoryPath, false},
		{"/var/lib/postgres/state.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostgresDSN(tt.target))
		})
	}
}

func TestPostgresStore_UsesNumberedPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewPostgresStoreWithDB(db, testutil.NewTestLogger(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := samplePrediction(1, at)
	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\)`).
		WithArgs(sqlmock.AnyArg(), at.UnixNano(), 1, p.Probability, true, p.ModelName, p.ModelVersion, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.SavePrediction(ctx, p))

	rows := sqlmock.NewRows([]string{"id", "created_at", "label", "probability", "exceeds", "model_name", "model_version", "inputs", "unknown_columns"}).
		AddRow(p.ID, at.UnixNano(), 1, p.Probability, true, p.ModelName, p.ModelVersion, `[{"name":"age","value":"52"}]`, "[]")
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs(p.ID).WillReturnRows(rows)

	got, err := store.GetPrediction(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, at, got.CreatedAt)
	assert.Equal(t, "52", got.InputValue("age"))

	mock.ExpectQuery(`LIMIT \$1`).WithArgs(5).WillReturnRows(sqlmock.NewRows(nil))
	list, err := store.ListPredictions(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_SQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	b, err := Open(path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.IsType(t, &SQLiteStore{}, b)
	version, err := b.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	_, err := Open("postgres://nobody@127.0.0.1:1/incomecast?connect_timeout=1", testutil.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
