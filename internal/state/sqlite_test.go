package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/testutil"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(MemoryPath))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func samplePrediction(label int, at time.Time) *core.Prediction {
	return &core.Prediction{
		CreatedAt: at,
		Inputs: []core.Input{
			{Name: "age", Value: "30"},
			{Name: "workclass", Value: "Private"},
		},
		Label:          label,
		Probability:    0.25 + 0.5*float64(label),
		Exceeds:        label == 1,
		ModelName:      "adult-income",
		ModelVersion:   "1",
		UnknownColumns: []string{"workclass_Other"},
	}
}

func TestSQLiteStore_OpenMigrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// migrating twice is a no-op
	require.NoError(t, store.Migrate())
	assert.Equal(t, MemoryPath, store.Path())
	assert.NotNil(t, store.DB())
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	path := t.TempDir() + "/state.db"

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SavePrediction(context.Background(), samplePrediction(1, time.Now())))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	defer func() { _ = reopened.Close() }()

	n, err := reopened.CountPredictions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := samplePrediction(1, time.Time{})
	require.NoError(t, store.SavePrediction(ctx, p))
	assert.NotEmpty(t, p.ID, "ID should be assigned")
	assert.False(t, p.CreatedAt.IsZero(), "timestamp should be assigned")

	got, err := store.GetPrediction(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, p.Inputs, got.Inputs)
	assert.Equal(t, 1, got.Label)
	assert.InDelta(t, 0.75, got.Probability, 1e-12)
	assert.True(t, got.Exceeds)
	assert.Equal(t, "adult-income", got.ModelName)
	assert.Equal(t, []string{"workclass_Other"}, got.UnknownColumns)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetPrediction(context.Background(), "nonexistent-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		p := samplePrediction(i%2, base.Add(time.Duration(i)*time.Minute))
		p.UnknownColumns = nil
		require.NoError(t, store.SavePrediction(ctx, p))
	}

	list, err := store.ListPredictions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.Equal(base.Add(4*time.Minute)))
	assert.True(t, list[2].CreatedAt.Equal(base.Add(2*time.Minute)))
	assert.Nil(t, list[0].UnknownColumns)

	all, err := store.ListPredictions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	n, err := store.CountPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.SavePrediction(ctx, &core.Prediction{}))
	_, err := store.GetPrediction(ctx, "x")
	assert.Error(t, err)
	_, err = store.ListPredictions(ctx, 1)
	assert.Error(t, err)
	_, err = store.CountPredictions(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
	_, err = store.GetMigrationVersion()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_DriverErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t))
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO predictions").WillReturnError(boom)
	err = store.SavePrediction(ctx, samplePrediction(0, time.Now()))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to save prediction")

	mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)
	_, err = store.CountPredictions(ctx)
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("FROM predictions ORDER BY").WillReturnError(boom)
	_, err = store.ListPredictions(ctx, 10)
	assert.ErrorIs(t, err, boom)

	rows := sqlmock.NewRows([]string{"id", "created_at", "label", "probability", "exceeds", "model_name", "model_version", "inputs", "unknown_columns"}).
		AddRow("bad", int64(0), 0, 0.1, false, "m", "1", "not-json", "[]")
	mock.ExpectQuery("WHERE id = ").WithArgs("bad").WillReturnRows(rows)
	_, err = store.GetPrediction(ctx, "bad")
	assert.ErrorContains(t, err, "corrupt inputs")

	assert.NoError(t, mock.ExpectationsWereMet())
}
