package predict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/predict/predicttest"
	"github.com/leapstack-labs/incomecast/internal/state"
	"github.com/leapstack-labs/incomecast/internal/testutil"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newService(t *testing.T, store core.Store, hook func(*core.Prediction)) *Service {
	t.Helper()
	svc, err := New(Config{
		Models:    predicttest.Provider(),
		Store:     store,
		Logger:    testutil.NewTestLogger(t),
		OnPredict: hook,
		now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func TestService_Predict(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		wantLabel  int
		wantProbLo float64
		wantProbHi float64
	}{
		{"high income", predicttest.HighIncome(), 1, 0.95, 0.96},
		{"low income", predicttest.LowIncome(), 0, 0.18, 0.19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, nil, nil)
			p, err := svc.Predict(context.Background(), tt.values)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLabel, p.Label)
			assert.Equal(t, tt.wantLabel == 1, p.Exceeds)
			assert.GreaterOrEqual(t, p.Probability, tt.wantProbLo)
			assert.LessOrEqual(t, p.Probability, tt.wantProbHi)
			assert.Equal(t, "test-income", p.ModelName)
			assert.Equal(t, "7", p.ModelVersion)
			assert.Equal(t, fixedNow, p.CreatedAt)
			_, err = uuid.Parse(p.ID)
			assert.NoError(t, err, "unsaved predictions still get an ID")
		})
	}
}

func TestService_PredictRecordsInputsAndUnknownColumns(t *testing.T) {
	svc := newService(t, nil, nil)

	p, err := svc.Predict(context.Background(), predicttest.HighIncome())
	require.NoError(t, err)

	// every field of the form is recorded, defaults included
	require.Len(t, p.Inputs, len(features.DefaultSchema().Fields))
	assert.Equal(t, "60", p.InputValue("age"))
	assert.Equal(t, "Doctorate", p.InputValue("education"))
	assert.Equal(t, "Private", p.InputValue("workclass"))

	assert.Contains(t, p.UnknownColumns, "workclass_Private")
	assert.NotContains(t, p.UnknownColumns, "sex_Female")
}

func TestService_PredictAcceptsLabels(t *testing.T) {
	svc := newService(t, nil, nil)

	p, err := svc.Predict(context.Background(), map[string]string{
		"age": "60", "hours.per.week": "60", "education": "Doctorat", "sex": "Femme",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Label)
	assert.Equal(t, "Female", p.InputValue("sex"))
}

func TestService_PredictValidation(t *testing.T) {
	svc := newService(t, nil, nil)

	_, err := svc.Predict(context.Background(), map[string]string{"age": "12", "sex": "unknown"})
	require.Error(t, err)

	var verr *features.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.For("age"))
	assert.NotEmpty(t, verr.For("sex"))
}

func TestService_PredictModelUnavailable(t *testing.T) {
	provider := artifact.NewProvider(artifact.ProviderConfig{Path: "missing.json"})
	svc, err := New(Config{Models: provider})
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), predicttest.HighIncome())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrModelUnavailable))
	assert.Contains(t, err.Error(), "failed to read artifact")
}

func TestService_PredictFeatureMismatch(t *testing.T) {
	bundle := predicttest.Bundle()
	bundle.Columns = bundle.Columns[:3]

	svc, err := New(Config{Models: artifact.Static(bundle)})
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), predicttest.HighIncome())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFeatureMismatch))
}

func TestService_PredictPersistsAndNotifies(t *testing.T) {
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(state.MemoryPath))
	require.NoError(t, store.Migrate())
	defer func() { _ = store.Close() }()

	var notified []*core.Prediction
	svc := newService(t, store, func(p *core.Prediction) { notified = append(notified, p) })

	ctx := context.Background()
	p, err := svc.Predict(ctx, predicttest.HighIncome())
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	saved, err := store.GetPrediction(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Inputs, saved.Inputs)
	assert.InDelta(t, p.Probability, saved.Probability, 1e-12)

	require.Len(t, notified, 1)
	assert.Same(t, p, notified[0])

	// validation failures are neither stored nor announced
	_, err = svc.Predict(ctx, map[string]string{"age": "abc"})
	require.Error(t, err)
	n, err := store.CountPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, notified, 1)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Models: predicttest.Provider(), Schema: &features.Schema{}})
	assert.Error(t, err)
}
