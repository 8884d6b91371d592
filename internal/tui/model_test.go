package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/predict/predicttest"
	"github.com/leapstack-labs/incomecast/internal/testutil"
)

func newModel(t *testing.T, models predict.BundleSource) Model {
	t.Helper()
	svc, err := predict.New(predict.Config{Models: models, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return New(context.Background(), svc, "")
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyR     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
)

func TestModel_DefaultValues(t *testing.T) {
	m := newModel(t, predicttest.Provider())

	values := m.Values()
	assert.Equal(t, "30", values["age"])
	assert.Equal(t, "40", values["hours.per.week"])
	assert.Equal(t, "Private", values["workclass"])
	assert.Contains(t, m.View(), "Prédiction de revenu")
	assert.Contains(t, m.View(), "Âge")
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(t, predicttest.Provider())
	n := len(m.fields)

	m, _ = press(t, m, keyUp)
	assert.Equal(t, n-1, m.cursor, "up from the first field wraps to the last")

	m, _ = press(t, m, keyDown, keyDown)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_EditValues(t *testing.T) {
	m := newModel(t, predicttest.Provider())

	// age: numeric, clamped at the minimum
	for i := 0; i < 20; i++ {
		m, _ = press(t, m, keyLeft)
	}
	assert.Equal(t, "18", m.Values()["age"])
	m, _ = press(t, m, keyRight)
	assert.Equal(t, "19", m.Values()["age"])

	// workclass: categorical, cycles in both directions
	m, _ = press(t, m, keyDown, keyRight)
	assert.Equal(t, "Self-emp-not-inc", m.Values()["workclass"])
	m, _ = press(t, m, keyLeft, keyLeft)
	assert.Equal(t, "Other", m.Values()["workclass"])

	m, _ = press(t, m, keyR)
	assert.Equal(t, "30", m.Values()["age"])
	assert.Equal(t, "Private", m.Values()["workclass"])
}

func TestModel_Predict(t *testing.T) {
	m := newModel(t, predicttest.Provider())

	m, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Prédiction en cours")

	next, _ := m.Update(cmd())
	m = next.(Model)

	require.NoError(t, m.Err())
	require.NotNil(t, m.Result())
	assert.Equal(t, 0, m.Result().Label)
	assert.Contains(t, m.View(), "Revenu ≤ 50 000$")
}

func TestModel_ModelUnavailable(t *testing.T) {
	m := newModel(t, artifact.NewProvider(artifact.ProviderConfig{Path: "absent.json"}))

	assert.Contains(t, m.View(), "Erreur lors du chargement")

	_, cmd := press(t, m, keyEnter)
	assert.Nil(t, cmd, "predict is disabled without a model")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, predicttest.Provider())

	_, cmd := press(t, m, keyQ)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
