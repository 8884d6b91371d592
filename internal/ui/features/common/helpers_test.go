package common

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDatastar(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	assert.False(t, IsDatastar(req))

	req.Header.Set("Datastar-Request", "true")
	assert.True(t, IsDatastar(req))
}

func TestFullPage(t *testing.T) {
	tmpl := NewTemplate("test", `{{define "content"}}<p id="x">{{.Data}}</p>{{end}}
{{define "fragment"}}<span>{{.}}</span>{{end}}`)

	var buf bytes.Buffer
	require.NoError(t, FullPage(tmpl, NewPage("Accueil", "/", "bonjour <b>")).Render(context.Background(), &buf))

	body := buf.String()
	assert.Contains(t, body, "<title>Accueil - incomecast</title>")
	assert.Contains(t, body, `href="/static/style.css"`)
	assert.Contains(t, body, `<a href="/" class="active">Prédiction</a>`)
	assert.Contains(t, body, `<a href="/history">Historique</a>`)
	assert.Contains(t, body, `<p id="x">bonjour &lt;b&gt;</p>`)

	buf.Reset()
	require.NoError(t, Render(tmpl, "fragment", 42).Render(context.Background(), &buf))
	assert.Equal(t, "<span>42</span>", buf.String())
}
