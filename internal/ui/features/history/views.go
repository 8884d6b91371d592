package history

import (
	"strings"

	"github.com/leapstack-labs/incomecast/internal/ui/features/common"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// HistoryView is the view model of the history table.
type HistoryView struct {
	Rows  []RowView
	Total int
	Error string
}

// RowView is one prediction row.
type RowView struct {
	ID          string
	CreatedAt   string
	Exceeds     bool
	Probability float64
	Summary     string
	Model       string
}

const pageHTML = `{{define "content"}}
<h1>Historique</h1>
<p class="lead">Les dernières prédictions effectuées.</p>
<div data-init="@get('/history/updates')">
{{template "history" .Data}}
</div>
{{end}}

{{define "history"}}<div id="history">
{{if .Error}}<div class="alert alert-error"><p>{{.Error}}</p></div>{{end}}
<p class="model-meta">{{.Total}} prédiction(s) enregistrée(s)</p>
{{if .Rows}}<table>
<thead><tr><th>Date</th><th>Résultat</th><th>Probabilité</th><th>Profil</th><th>Modèle</th></tr></thead>
<tbody>
{{range .Rows}}<tr id="p-{{.ID}}"><td>{{.CreatedAt}}</td><td>{{if .Exceeds}}&gt; seuil{{else}}&le; seuil{{end}}</td><td class="num">{{percent .Probability}}</td><td>{{.Summary}}</td><td>{{.Model}}</td></tr>
{{end}}</tbody>
</table>{{else}}<p>Aucune prédiction pour le moment.</p>{{end}}
</div>{{end}}`

var pageTemplate = common.NewTemplate("history", pageHTML)

func rowViews(schema *features.Schema, predictions []*core.Prediction) []RowView {
	rows := make([]RowView, len(predictions))
	for i, p := range predictions {
		model := p.ModelName
		if p.ModelVersion != "" {
			model += " " + p.ModelVersion
		}
		rows[i] = RowView{
			ID:          p.ID,
			CreatedAt:   p.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			Exceeds:     p.Exceeds,
			Probability: p.Probability,
			Summary:     summarize(schema, p.Inputs),
			Model:       model,
		}
	}
	return rows
}

// summarize renders inputs as "Âge 30, Sexe Femme, ..." using display labels.
func summarize(schema *features.Schema, inputs []core.Input) string {
	parts := make([]string, 0, len(inputs))
	for _, in := range inputs {
		f, ok := schema.Field(in.Name)
		if !ok {
			parts = append(parts, in.Name+" "+in.Value)
			continue
		}
		value := in.Value
		if f.Kind == features.KindCategorical {
			value = f.LabelFor(in.Value)
		}
		parts = append(parts, f.Label+" "+value)
	}
	return strings.Join(parts, ", ")
}
