package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/cli/output"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show artifact metadata and reference columns",
		Long: `Load the model artifact and print its metadata and the reference
columns form input is aligned to, along with where those columns came from
(columns file, artifact, or model feature names).`,
		Example: `  incomecast inspect
  incomecast inspect --artifact model.toml --columns columns.txt -o json`,
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, _ []string) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	bundle, err := artifact.Load(c.Cfg.Artifact, c.Cfg.Columns)
	if err != nil {
		return err
	}
	out := inspectOutput(bundle)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		parts := []string{
			output.FormatHeader(2, modelName(out.Name, out.Version)),
			strings.Join([]string{
				output.FormatKeyValue("Kind", out.Kind),
				output.FormatKeyValue("Path", out.Path),
				output.FormatKeyValue("Checksum", out.Checksum),
				output.FormatKeyValue("Classes", fmt.Sprint(out.Classes)),
				output.FormatKeyValue("Columns", fmt.Sprintf("%d (%s)", out.Features, out.ColumnsSource)),
			}, "  \n"),
			output.FormatHeader(3, "Columns"),
			output.FormatList(out.Columns),
		}
		r.Println(strings.Join(parts, "\n\n"))
	default:
		r.Println(r.Header(modelName(out.Name, out.Version)))
		r.Printf("Kind:     %s\n", out.Kind)
		r.Printf("Path:     %s\n", out.Path)
		r.Printf("Checksum: %s\n", out.Checksum)
		r.Printf("Classes:  %v\n", out.Classes)
		r.Printf("Columns:  %d %s\n", out.Features, r.Muted("("+string(out.ColumnsSource)+")"))
		rows := make([][]string, len(out.Columns))
		for i, col := range out.Columns {
			rows[i] = []string{fmt.Sprint(i), col}
		}
		r.Table([]string{"#", "Column"}, rows)
	}
	return nil
}

func inspectOutput(b *artifact.Bundle) output.InspectOutput {
	return output.InspectOutput{
		Name:          b.Meta.Name,
		Version:       b.Meta.Version,
		Kind:          b.Meta.Kind,
		Path:          b.Meta.Path,
		Checksum:      b.Meta.Checksum,
		LoadedAt:      b.Meta.LoadedAt,
		Features:      b.Classifier.NumFeatures(),
		Classes:       b.Classifier.Classes(),
		ColumnsSource: string(b.ColumnsSource),
		Columns:       b.Columns,
	}
}
