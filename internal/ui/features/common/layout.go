package common

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/ui/resources"
)

// DatastarScript is the client bundle that drives SSE patches.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

const layoutHTML = `{{define "layout"}}<!doctype html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - incomecast</title>
<link rel="stylesheet" href="{{static "style.css"}}">
<script type="module" src="{{datastar}}"></script>
</head>
<body>
<nav>
<strong>incomecast</strong>
{{range .Nav}}<a href="{{.Path}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>
{{end}}</nav>
<main>
{{template "content" .}}
</main>
</body>
</html>
{{end}}`

// Funcs are available to every feature template.
var Funcs = template.FuncMap{
	"static":   resources.StaticPath,
	"datastar": func() string { return DatastarScript },
	"percent":  predict.Percent,
}

// NewTemplate parses a feature's templates on top of the page layout. The
// feature must define a "content" template; other templates it defines can
// be rendered alone as SSE fragments.
func NewTemplate(name, text string) *template.Template {
	layout := template.Must(template.New(name).Funcs(Funcs).Parse(layoutHTML))
	return template.Must(layout.Parse(text))
}

// Render returns the named template of t as a templ component.
func Render(t *template.Template, name string, data any) templ.Component {
	return templ.FromGoHTML(t.Lookup(name), data)
}

// FullPage renders the layout of t around page.
func FullPage(t *template.Template, page Page) templ.Component {
	return Render(t, "layout", page)
}
