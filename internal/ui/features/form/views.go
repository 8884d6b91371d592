package form

import (
	"strconv"

	"github.com/leapstack-labs/incomecast/internal/ui/features/common"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// FormView is the view model of the form page.
type FormView struct {
	Fields    []FieldView
	LoadError string
	Disabled  bool
	Model     *ModelView
	Result    *ResultView
}

// FieldView is one rendered input.
type FieldView struct {
	Name    string
	Label   string
	Numeric bool
	Min     string
	Max     string
	Step    string
	Value   string
	Choices []ChoiceView
	Error   string
}

// ChoiceView is one option of a select.
type ChoiceView struct {
	Label    string
	Value    string
	Selected bool
}

// ModelView summarizes the loaded model under the form.
type ModelView struct {
	Name    string
	Version string
	Columns int
}

// ResultView is the content of the #result element.
type ResultView struct {
	Failed  bool
	Exceeds bool
	Message string
	Title   string
	Details string
	Hint    string
}

const pageHTML = `{{define "content"}}{{with .Data}}
<h1>Prédiction de revenu</h1>
<p class="lead">Renseignez le profil puis lancez la prédiction.</p>
{{if .LoadError}}<div id="load-error" class="alert alert-error"><p>{{.LoadError}}</p></div>{{end}}
{{template "form" .}}
{{template "result" .Result}}
{{with .Model}}<p class="model-meta">Modèle {{.Name}} {{.Version}} ({{.Columns}} colonnes)</p>{{end}}
{{end}}{{end}}

{{define "form"}}<form id="predict-form" class="form-grid" method="post" action="/predict" data-on:submit="@post('/predict', {contentType: 'form'})">
{{range .Fields}}<div class="field">
<label for="f-{{.Name}}">{{.Label}}</label>
{{if .Numeric}}<input type="range" id="f-{{.Name}}" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}">
<span class="range-value">{{.Value}}</span>
{{else}}<select id="f-{{.Name}}" name="{{.Name}}">
{{range .Choices}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{end}}{{if .Error}}<span class="field-error">{{.Error}}</span>{{end}}
</div>
{{end}}<div class="actions"><button type="submit"{{if $.Disabled}} disabled{{end}}>Effectuer la prédiction</button></div>
</form>{{end}}

{{define "result"}}<div id="result">{{with .}}{{if .Failed}}<div class="alert alert-error"><p><strong>{{.Title}}</strong></p><p>{{.Details}}</p></div><div class="alert alert-info"><p>{{.Hint}}</p></div>{{else}}<div class="alert {{if .Exceeds}}alert-success{{else}}alert-warning{{end}}"><p>{{.Message}}</p></div>{{end}}{{end}}</div>{{end}}`

var pageTemplate = common.NewTemplate("form", pageHTML)

// fieldViews renders schema fields with the given values. Values may be
// choice values or labels; unknown or missing values fall back to the
// field default.
func fieldViews(schema *features.Schema, values map[string]string, verr *features.ValidationError) []FieldView {
	defaults := schema.Defaults()
	out := make([]FieldView, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := values[f.Name]
		if !ok || v == "" {
			v = defaults[f.Name]
		}

		fv := FieldView{Name: f.Name, Label: f.Label}
		if verr != nil {
			fv.Error = verr.For(f.Name)
		}

		switch f.Kind {
		case features.KindNumeric:
			fv.Numeric = true
			fv.Min = formatFloat(f.Min)
			fv.Max = formatFloat(f.Max)
			fv.Step = "1"
			if !f.Integer {
				fv.Step = "any"
			}
			fv.Value = v
		case features.KindCategorical:
			selected := f.Choices[0].Value
			for _, c := range f.Choices {
				if c.Value == v || c.Label == v {
					selected = c.Value
					break
				}
			}
			for _, c := range f.Choices {
				fv.Choices = append(fv.Choices, ChoiceView{Label: c.Label, Value: c.Value, Selected: c.Value == selected})
			}
		}
		out = append(out, fv)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
