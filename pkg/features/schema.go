// Package features turns raw form input into the feature row a classifier
// was trained on: schema-driven parsing, one-hot encoding and alignment
// against a training-time column list.
package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/text/unicode/norm"
)

// FieldKind distinguishes numeric inputs from categorical ones.
type FieldKind string

// Field kinds.
const (
	KindNumeric     FieldKind = "numeric"
	KindCategorical FieldKind = "categorical"
)

// Choice is one option of a categorical field. Label is shown to the user,
// Value is the category token seen at training time.
type Choice struct {
	Label string `koanf:"label" json:"label" yaml:"label"`
	Value string `koanf:"value" json:"value" yaml:"value"`
}

// Field describes one raw input column.
type Field struct {
	Name    string    `koanf:"name" json:"name" yaml:"name"`
	Label   string    `koanf:"label" json:"label" yaml:"label"`
	Kind    FieldKind `koanf:"kind" json:"kind" yaml:"kind"`
	Min     float64   `koanf:"min" json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64   `koanf:"max" json:"max,omitempty" yaml:"max,omitempty"`
	Default float64   `koanf:"default" json:"default,omitempty" yaml:"default,omitempty"`
	Integer bool      `koanf:"integer" json:"integer,omitempty" yaml:"integer,omitempty"`
	Choices []Choice  `koanf:"choices" json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Schema is the ordered list of form fields. Field order is the raw column
// order used by OneHot.
type Schema struct {
	Fields []Field `koanf:"fields" json:"fields" yaml:"fields"`
}

// DefaultSchema returns the income form: labels are French, values are the
// categories of the census training data.
func DefaultSchema() *Schema {
	return &Schema{Fields: []Field{
		{Name: "age", Label: "Âge", Kind: KindNumeric, Min: 18, Max: 100, Default: 30, Integer: true},
		{Name: "workclass", Label: "Classe professionnelle", Kind: KindCategorical, Choices: []Choice{
			{Label: "Privé", Value: "Private"},
			{Label: "Auto-emploi", Value: "Self-emp-not-inc"},
			{Label: "Gouvernement", Value: "Federal-gov"},
			{Label: "Autre", Value: "Other"},
		}},
		{Name: "education", Label: "Niveau d'éducation", Kind: KindCategorical, Choices: []Choice{
			{Label: "Licence", Value: "Bachelors"},
			{Label: "Bac", Value: "HS-grad"},
			{Label: "Master", Value: "Masters"},
			{Label: "Doctorat", Value: "Doctorate"},
		}},
		{Name: "marital.status", Label: "Statut matrimonial", Kind: KindCategorical, Choices: []Choice{
			{Label: "Marié(e)", Value: "Married-civ-spouse"},
			{Label: "Divorcé(e)", Value: "Divorced"},
			{Label: "Célibataire", Value: "Never-married"},
		}},
		{Name: "occupation", Label: "Profession", Kind: KindCategorical, Choices: []Choice{
			{Label: "Technique", Value: "Tech-support"},
			{Label: "Ventes", Value: "Sales"},
			{Label: "Administratif", Value: "Adm-clerical"},
			{Label: "Autre", Value: "Other-service"},
		}},
		{Name: "relationship", Label: "Situation familiale", Kind: KindCategorical, Choices: []Choice{
			{Label: "Conjoint", Value: "Husband"},
			{Label: "Conjointe", Value: "Wife"},
			{Label: "Sans conjoint", Value: "Not-in-family"},
		}},
		{Name: "race", Label: "Origine ethnique", Kind: KindCategorical, Choices: []Choice{
			{Label: "Blanc", Value: "White"},
			{Label: "Noir", Value: "Black"},
			{Label: "Asiatique", Value: "Asian-Pac-Islander"},
		}},
		{Name: "sex", Label: "Genre", Kind: KindCategorical, Choices: []Choice{
			{Label: "Homme", Value: "Male"},
			{Label: "Femme", Value: "Female"},
		}},
		{Name: "hours.per.week", Label: "Heures travaillées par semaine", Kind: KindNumeric, Min: 1, Max: 80, Default: 40, Integer: true},
	}}
}

// Validate checks that the schema itself is usable.
func (s *Schema) Validate() error {
	if s == nil || len(s.Fields) == 0 {
		return fmt.Errorf("schema has no fields")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema field without name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case KindNumeric:
			if f.Max < f.Min {
				return fmt.Errorf("field %q: max %v is below min %v", f.Name, f.Max, f.Min)
			}
			if f.Default < f.Min || f.Default > f.Max {
				return fmt.Errorf("field %q: default %v outside [%v, %v]", f.Name, f.Default, f.Min, f.Max)
			}
		case KindCategorical:
			if len(f.Choices) == 0 {
				return fmt.Errorf("field %q has no choices", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the value each field takes when it is not submitted.
func (s *Schema) Defaults() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Kind {
		case KindNumeric:
			out[f.Name] = formatNumber(f.Default)
		case KindCategorical:
			if len(f.Choices) > 0 {
				out[f.Name] = f.Choices[0].Value
			}
		}
	}
	return out
}

// Parse validates raw form values against the schema and returns the raw
// record in schema order. Absent fields take their default. Every invalid
// field is reported in a single *ValidationError.
func (s *Schema) Parse(values map[string]string) (Record, error) {
	record := make(Record, 0, len(s.Fields))
	verr := &ValidationError{}

	for _, f := range s.Fields {
		raw, ok := values[f.Name]
		raw = strings.TrimSpace(raw)

		switch f.Kind {
		case KindNumeric:
			n := f.Default
			if ok && raw != "" {
				parsed, err := parseNumber(raw)
				if err != nil {
					verr.add(f.Name, fmt.Sprintf("%q is not a number", raw))
					continue
				}
				n = parsed
			}
			if f.Integer && n != math.Trunc(n) {
				verr.add(f.Name, fmt.Sprintf("%v is not a whole number", n))
				continue
			}
			if n < f.Min || n > f.Max {
				verr.add(f.Name, fmt.Sprintf("%v is outside [%v, %v]", n, formatNumber(f.Min), formatNumber(f.Max)))
				continue
			}
			record = append(record, Cell{Name: f.Name, Kind: KindNumeric, Number: n, Text: formatNumber(n)})

		case KindCategorical:
			if !ok || raw == "" {
				record = append(record, Cell{Name: f.Name, Kind: KindCategorical, Text: f.Choices[0].Value})
				continue
			}
			choice, found := f.match(raw)
			if !found {
				verr.add(f.Name, fmt.Sprintf("%q is not one of the allowed values", raw))
				continue
			}
			record = append(record, Cell{Name: f.Name, Kind: KindCategorical, Text: choice.Value})
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return record, nil
}

// match resolves a submitted value (either the choice Value or its Label)
// to a choice. Comparison is done on NFC-normalized text so decomposed
// accents from some browsers still match.
func (f Field) match(raw string) (Choice, bool) {
	want := norm.NFC.String(raw)
	for _, c := range f.Choices {
		if norm.NFC.String(c.Value) == want || norm.NFC.String(c.Label) == want {
			return c, true
		}
	}
	for _, c := range f.Choices {
		if strings.EqualFold(norm.NFC.String(c.Value), want) || strings.EqualFold(norm.NFC.String(c.Label), want) {
			return c, true
		}
	}
	return Choice{}, false
}

// LabelFor returns the display label of a categorical value, or the value
// itself when it is not a known choice.
func (f Field) LabelFor(value string) string {
	if c, ok := f.match(value); ok {
		return c.Label
	}
	return value
}

// parseNumber decodes a form value with mapstructure's weak typing. A decimal
// comma is accepted.
func parseNumber(raw string) (float64, error) {
	var n float64
	if err := mapstructure.WeakDecode(strings.ReplaceAll(raw, ",", "."), &n); err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
