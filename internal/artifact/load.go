package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/leapstack-labs/incomecast/pkg/features"
	"github.com/leapstack-labs/incomecast/pkg/model"
)

// ColumnsSource records where the reference column list came from.
type ColumnsSource string

// Column sources, highest priority first.
const (
	ColumnsFromFile     ColumnsSource = "columns_file"
	ColumnsFromArtifact ColumnsSource = "artifact"
	ColumnsFromModel    ColumnsSource = "model"
)

// Meta describes a loaded artifact.
type Meta struct {
	Name     string
	Version  string
	Kind     string
	Path     string
	Checksum string
	LoadedAt time.Time
}

// Bundle is a classifier plus the column list its input must be aligned to.
type Bundle struct {
	Meta          Meta
	Classifier    model.Classifier
	Columns       []string
	ColumnsSource ColumnsSource
}

// Load reads the artifact at path and resolves its reference columns. The
// columns come from columnsPath when set, else from the artifact's own
// columns list, else from the feature names recorded by the model.
func Load(path, columnsPath string) (*Bundle, error) {
	if path == "" {
		return nil, fmt.Errorf("no artifact path configured")
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	doc, err := DecodeDocument(data, FormatOf(path))
	if err != nil {
		return nil, err
	}

	columns, source, err := resolveColumns(doc, columnsPath)
	if err != nil {
		return nil, err
	}
	if len(doc.FeatureNames) == 0 && len(doc.Columns) == 0 {
		// width of tree models comes from the column list
		doc.Columns = columns
	}

	clf, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}

	if len(columns) != clf.NumFeatures() {
		return nil, fmt.Errorf("column list (%s) has %d columns but the model expects %d features",
			source, len(columns), clf.NumFeatures())
	}

	sum := sha256.Sum256(data)
	name := doc.Name
	if name == "" {
		name = "model"
	}
	kind := doc.Kind
	if kind == "" {
		kind = KindLogisticRegression
	}

	return &Bundle{
		Meta: Meta{
			Name:     name,
			Version:  doc.Version,
			Kind:     kind,
			Path:     path,
			Checksum: hex.EncodeToString(sum[:]),
			LoadedAt: time.Now().UTC(),
		},
		Classifier:    clf,
		Columns:       columns,
		ColumnsSource: source,
	}, nil
}

func resolveColumns(doc *Document, columnsPath string) ([]string, ColumnsSource, error) {
	cols, source, err := pickColumns(doc, columnsPath)
	if err != nil {
		return nil, "", err
	}
	if err := features.CheckReference(cols); err != nil {
		return nil, "", fmt.Errorf("column list (%s): %w", source, err)
	}
	return cols, source, nil
}

func pickColumns(doc *Document, columnsPath string) ([]string, ColumnsSource, error) {
	if columnsPath != "" {
		data, err := os.ReadFile(columnsPath) //nolint:gosec // G304: path comes from configuration
		if err != nil {
			return nil, "", fmt.Errorf("failed to read columns file: %w", err)
		}
		cols, err := DecodeColumns(data, FormatOf(columnsPath))
		if err != nil {
			return nil, "", err
		}
		if len(cols) == 0 {
			return nil, "", fmt.Errorf("columns file %s is empty", columnsPath)
		}
		return cols, ColumnsFromFile, nil
	}
	if len(doc.Columns) > 0 {
		return doc.Columns, ColumnsFromArtifact, nil
	}
	if len(doc.FeatureNames) > 0 {
		return doc.FeatureNames, ColumnsFromModel, nil
	}
	return nil, "", fmt.Errorf("no column list: set a columns file, or add columns or feature_names to the artifact")
}
