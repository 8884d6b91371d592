package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/cli/output"
	"github.com/leapstack-labs/incomecast/internal/predict"
)

// DefaultHistoryLimit is the number of predictions shown by default.
const DefaultHistoryLimit = 20

// ErrHistoryDisabled is returned when no state database is configured.
var ErrHistoryDisabled = errors.New("history is disabled (state_path is empty)")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent predictions",
		Long:  `List recorded predictions, newest first.`,
		Example: `  # Last 20 predictions
  incomecast history

  # Last 5 as JSON
  incomecast history --limit 5 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "Maximum number of predictions to show")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	c := NewCommandContext(cmd)
	r := c.Renderer
	ctx := cmd.Context()

	store, err := c.OpenStore()
	if err != nil {
		return err
	}
	if store == nil {
		return ErrHistoryDisabled
	}
	defer func() { _ = store.Close() }()

	total, err := store.CountPredictions(ctx)
	if err != nil {
		return err
	}
	preds, err := store.ListPredictions(ctx, limit)
	if err != nil {
		return err
	}

	label := c.ThresholdLabel()
	out := output.HistoryOutput{Total: total, Predictions: make([]output.PredictionOutput, len(preds))}
	for i, p := range preds {
		out.Predictions[i] = toOutput(p, label)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	if total == 0 {
		r.Println(r.Muted("Aucune prédiction pour le moment."))
		return nil
	}

	schema := c.Cfg.Schema()
	rows := make([][]string, len(out.Predictions))
	for i, p := range out.Predictions {
		result := "≤ seuil"
		if p.Exceeds {
			result = "> seuil"
		}
		rows[i] = []string{
			formatTime(p.CreatedAt),
			result,
			predict.Percent(p.Probability),
			modelName(p.Model, p.ModelVersion),
			strings.Join(inputLines(schema, p.Inputs), ", "),
		}
	}

	if r.EffectiveMode() == output.ModeText {
		r.Println(r.Header("Historique"))
	} else {
		r.Println(output.FormatHeader(2, "Historique"))
		r.Println()
	}
	r.Table([]string{"Date", "Résultat", "Probabilité", "Modèle", "Entrées"}, rows)
	r.Printf("%d prédiction(s) enregistrée(s)\n", total)
	return nil
}
