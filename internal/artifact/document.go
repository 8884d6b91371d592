// Package artifact locates and loads serialized classifiers together with
// the training-time column list they expect.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Model kinds understood by Build.
const (
	KindLogisticRegression = "logistic_regression"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
)

// Document is the serialized form of a model artifact.
type Document struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Version string `json:"version" yaml:"version" toml:"version"`
	Kind    string `json:"kind" yaml:"kind" toml:"kind"`
	Classes []int  `json:"classes,omitempty" yaml:"classes,omitempty" toml:"classes,omitempty"`

	// FeatureNames are the column names the estimator saw during training.
	FeatureNames []string `json:"feature_names,omitempty" yaml:"feature_names,omitempty" toml:"feature_names,omitempty"`
	// Columns overrides FeatureNames when the artifact bundles its own list.
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`

	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty" toml:"threshold,omitempty"`

	Scaler   *ScalerDoc   `json:"scaler,omitempty" yaml:"scaler,omitempty" toml:"scaler,omitempty"`
	Logistic *LogisticDoc `json:"logistic,omitempty" yaml:"logistic,omitempty" toml:"logistic,omitempty"`
	Trees    []TreeDoc    `json:"trees,omitempty" yaml:"trees,omitempty" toml:"trees,omitempty"`
}

// ScalerDoc holds standard scaler parameters.
type ScalerDoc struct {
	Mean  []float64 `json:"mean" yaml:"mean" toml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale" toml:"scale"`
}

// LogisticDoc holds logistic regression parameters.
type LogisticDoc struct {
	Coef      []float64 `json:"coef" yaml:"coef" toml:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept" toml:"intercept"`
}

// TreeDoc holds one fitted tree as flattened node arrays.
type TreeDoc struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left" toml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right" toml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature" toml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold" toml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value" toml:"value"`
}

// Format is the on-disk encoding of a document or columns file.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatText Format = "text"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// DecodeDocument parses an artifact document.
func DecodeDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported artifact format %q (use .json, .yaml or .toml)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s artifact: %w", format, err)
	}
	return &doc, nil
}

// DecodeColumns parses a columns file: a JSON array, a YAML list, or plain
// text with one column per line (blank lines and # comments are skipped).
func DecodeColumns(data []byte, format Format) ([]string, error) {
	var cols []string
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &cols); err != nil {
			return nil, fmt.Errorf("failed to decode JSON columns: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cols); err != nil {
			return nil, fmt.Errorf("failed to decode YAML columns: %w", err)
		}
	case FormatTOML:
		var wrapper struct {
			Columns []string `toml:"columns"`
		}
		if err := toml.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode TOML columns: %w", err)
		}
		cols = wrapper.Columns
	default:
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cols = append(cols, line)
		}
	}
	return cols, nil
}
