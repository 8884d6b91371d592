package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/cli/config"
	"github.com/leapstack-labs/incomecast/internal/cli/output"
	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/state"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.OutputMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewProvider returns an artifact provider for the configured paths.
func (c *CommandContext) NewProvider() *artifact.Provider {
	return artifact.NewProvider(artifact.ProviderConfig{
		Path:        c.Cfg.Artifact,
		ColumnsPath: c.Cfg.Columns,
		Logger:      c.Logger,
	})
}

// OpenStore opens and migrates the history database. It returns a nil
// store when history is disabled by an empty state_path.
func (c *CommandContext) OpenStore() (core.Store, error) {
	target := c.Cfg.StatePath
	if target == "" {
		return nil, nil
	}
	if target != state.MemoryPath && !state.IsPostgresDSN(target) {
		if dir := filepath.Dir(target); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store, err := state.Open(target, c.Logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewService builds the prediction service over models and an optional store.
func (c *CommandContext) NewService(models predict.BundleSource, store core.Store, onPredict func(*core.Prediction)) (*predict.Service, error) {
	return predict.New(predict.Config{
		Models:    models,
		Schema:    c.Cfg.Schema(),
		Store:     store,
		Logger:    c.Logger,
		OnPredict: onPredict,
	})
}

// ThresholdLabel is the income threshold shown in messages.
func (c *CommandContext) ThresholdLabel() string {
	if c.Cfg.ThresholdLabel == "" {
		return predict.DefaultThresholdLabel
	}
	return c.Cfg.ThresholdLabel
}

// getConfig returns the current configuration, or defaults when none was
// loaded (commands run outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Artifact:       config.DefaultArtifact,
		StatePath:      config.DefaultStateFile,
		OutputFormat:   config.DefaultOutput,
		ThresholdLabel: config.DefaultThresholdLabel,
	}
}

// toOutput converts a prediction to its printable form.
func toOutput(p *core.Prediction, thresholdLabel string) output.PredictionOutput {
	inputs := make(map[string]string, len(p.Inputs))
	for _, in := range p.Inputs {
		inputs[in.Name] = in.Value
	}
	return output.PredictionOutput{
		ID:             p.ID,
		CreatedAt:      p.CreatedAt,
		Label:          p.Label,
		Probability:    p.Probability,
		Exceeds:        p.Exceeds,
		Message:        predict.Message(p, thresholdLabel),
		Model:          p.ModelName,
		ModelVersion:   p.ModelVersion,
		Inputs:         inputs,
		UnknownColumns: p.UnknownColumns,
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
