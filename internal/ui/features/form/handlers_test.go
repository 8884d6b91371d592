package form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/predict/predicttest"
	"github.com/leapstack-labs/incomecast/internal/testutil"
	"github.com/leapstack-labs/incomecast/internal/ui/features"
)

func setupTestHandlers(t *testing.T, fixture *features.TestFixture) *Handlers {
	t.Helper()
	return NewHandlers(fixture.Service, fixture.SessionStore, "", testutil.NewTestLogger(t))
}

func postForm(values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestFormPage(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := setupTestHandlers(t, fixture)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.FormPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Prédiction - incomecast</title>",
		`id="predict-form"`,
		`data-on:submit=`,
		`name="age" min="18" max="100" step="1" value="30"`,
		`name="hours.per.week" min="1" max="80" step="1" value="40"`,
		`<option value="Private" selected>Privé</option>`,
		`<option value="Female">Femme</option>`,
		`<div id="result"></div>`,
		`<button type="submit">Effectuer la prédiction</button>`,
		"Modèle test-income 7 (5 colonnes)",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "load-error")
}

func TestFormPage_ModelUnavailable(t *testing.T) {
	fixture := features.SetupUnavailableFixture(t)
	h := setupTestHandlers(t, fixture)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.FormPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Erreur lors du chargement : model unavailable")
	assert.Contains(t, body, "failed to read artifact")
	assert.Contains(t, body, `<button type="submit" disabled>`)
}

func TestPredict_FullPage(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := setupTestHandlers(t, fixture)

	rec := httptest.NewRecorder()
	h.Predict(rec, postForm(predicttest.HighIncome()))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, `<div class="alert alert-success"><p>Prédiction : Revenu &gt; 50 000$ (Probabilité : 95.3%)</p></div>`)
	// the page keeps the submitted values
	assert.Contains(t, body, `name="age" min="18" max="100" step="1" value="60"`)
	assert.Contains(t, body, `<option value="Doctorate" selected>Doctorat</option>`)

	n, err := fixture.Store.CountPredictions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPredict_Datastar(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := setupTestHandlers(t, fixture)

	req := postForm(predicttest.LowIncome())
	req.Header.Set("Datastar-Request", "true")
	rec := httptest.NewRecorder()
	h.Predict(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="result"`)
	assert.Contains(t, body, "alert-warning")
	assert.Contains(t, body, "Prédiction : Revenu ≤ 50 000$ (Probabilité : 18.2%)")
	assert.NotContains(t, body, "<!doctype html>")
}

func TestPredict_ValidationError(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := setupTestHandlers(t, fixture)

	rec := httptest.NewRecorder()
	h.Predict(rec, postForm(map[string]string{"age": "12", "sex": "Female"}))

	body := rec.Body.String()
	assert.Contains(t, body, "Une erreur est survenue lors de la prédiction")
	assert.Contains(t, body, "Détails de l&#39;erreur : invalid input: age")
	assert.Contains(t, body, "Veuillez vérifier que toutes les données sont correctement renseignées.")
	assert.Contains(t, body, `<span class="field-error">`)

	n, err := fixture.Store.CountPredictions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPredict_ModelUnavailable(t *testing.T) {
	fixture := features.SetupUnavailableFixture(t)
	h := setupTestHandlers(t, fixture)

	req := postForm(predicttest.HighIncome())
	req.Header.Set("Datastar-Request", "true")
	rec := httptest.NewRecorder()
	h.Predict(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Une erreur est survenue lors de la prédiction")
	assert.Contains(t, body, "model unavailable")
}

func TestPredict_RemembersValues(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := setupTestHandlers(t, fixture)

	rec := httptest.NewRecorder()
	h.Predict(rec, postForm(predicttest.HighIncome()))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "session cookie should be set")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.FormPage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `name="hours.per.week" min="1" max="80" step="1" value="60"`)
	assert.Contains(t, body, `<option value="Female" selected>Femme</option>`)
}
