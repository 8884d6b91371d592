// Package features provides shared test utilities for UI feature tests.
package features

import (
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/predict/predicttest"
	"github.com/leapstack-labs/incomecast/internal/state"
	"github.com/leapstack-labs/incomecast/internal/testutil"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Service      *predict.Service
	Store        core.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a fixture serving the predicttest bundle, with
// an in-memory history store wired to the notifier.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()
	return setupFixture(t, predicttest.Provider())
}

// SetupUnavailableFixture creates a fixture whose model failed to load.
func SetupUnavailableFixture(t *testing.T) *TestFixture {
	t.Helper()
	return setupFixture(t, artifact.NewProvider(artifact.ProviderConfig{Path: "missing-model.json"}))
}

func setupFixture(t *testing.T, models predict.BundleSource) *TestFixture {
	t.Helper()

	store := SetupTestStore(t)
	notify := notifier.New()

	svc, err := predict.New(predict.Config{
		Models:    models,
		Store:     store,
		Logger:    testutil.NewTestLogger(t),
		OnPredict: func(*core.Prediction) { notify.Broadcast() },
	})
	require.NoError(t, err)

	return &TestFixture{
		Service:      svc,
		Store:        store,
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
	}
}

// SetupTestStore creates a migrated in-memory history store.
func SetupTestStore(t *testing.T) core.Store {
	t.Helper()

	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(state.MemoryPath))
	require.NoError(t, store.Migrate())

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
