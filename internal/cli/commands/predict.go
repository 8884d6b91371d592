package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/cli/output"
	"github.com/leapstack-labs/incomecast/pkg/core"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// PredictOptions holds options for the predict command.
type PredictOptions struct {
	Values      map[string]string
	NoSave      bool
	Interactive bool
}

// NewPredictCommand creates the predict command.
func NewPredictCommand() *cobra.Command {
	opts := &PredictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict income for one set of attributes",
		Long: `Score one set of attributes against the model.

Fields not given with --set take their form default. Categorical fields
accept either the category value the model was trained on or the label
shown in the form.`,
		Example: `  # Predict with defaults for every field
  incomecast predict

  # Override some fields
  incomecast predict --set age=52 --set education=Doctorate --set sex=Femme

  # Answer a prompt for every field not given with --set
  incomecast predict -i --set age=41

  # Machine-readable output
  incomecast predict --set hours.per.week=60 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, opts)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Values, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "Do not record the prediction in history")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Prompt for fields not given with --set")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *PredictOptions) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	var store core.Store
	if !opts.NoSave {
		var err error
		if store, err = c.OpenStore(); err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}
	}

	service, err := c.NewService(c.NewProvider(), store, nil)
	if err != nil {
		return err
	}

	values := opts.Values
	if opts.Interactive {
		rl, err := newLineReader(service.Schema(), cmd.InOrStdin(), cmd.ErrOrStderr(), c.Cfg.StatePath)
		if err != nil {
			return fmt.Errorf("failed to initialize prompt: %w", err)
		}
		values, err = promptValues(rl, cmd.ErrOrStderr(), service.Schema(), values)
		_ = rl.Close()
		if err != nil {
			return err
		}
	}

	p, err := service.Predict(cmd.Context(), values)
	if err != nil {
		return err
	}

	out := toOutput(p, c.ThresholdLabel())

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		parts := []string{
			output.FormatHeader(2, "Prédiction"),
			out.Message,
			output.FormatKeyValue("Modèle", modelName(out.Model, out.ModelVersion)),
		}
		if out.ID != "" {
			parts = append(parts, output.FormatKeyValue("ID", out.ID))
		}
		parts = append(parts,
			output.FormatHeader(3, "Entrées"),
			output.FormatList(inputLines(service.Schema(), out.Inputs)))
		r.Println(strings.Join(parts, "\n\n"))
	default:
		r.Println(r.Header("Prédiction"))
		if out.Exceeds {
			r.Println(r.Success(out.Message))
		} else {
			r.Println(r.Warning(out.Message))
		}
		r.Println(r.Muted("Modèle : " + modelName(out.Model, out.ModelVersion)))
		if len(out.UnknownColumns) > 0 {
			r.Println(r.Muted("Colonnes ignorées : " + strings.Join(out.UnknownColumns, ", ")))
		}
	}
	return nil
}

func modelName(name, version string) string {
	if version == "" {
		return name
	}
	return name + " v" + version
}

// inputLines renders inputs as "Label : value" in schema order.
func inputLines(schema *features.Schema, inputs map[string]string) []string {
	lines := make([]string, 0, len(inputs))
	for _, f := range schema.Fields {
		if v, ok := inputs[f.Name]; ok {
			lines = append(lines, f.Label+" : "+v)
		}
	}
	return lines
}
