package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/cli/config"
	"github.com/leapstack-labs/incomecast/internal/cli/output"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the artifact, columns and history database",
		Long: `Run health checks over the configuration:

- the artifact loads and its classifier has as many features as columns
- the columns file, when configured, exists
- the default form row aligns to the reference columns
- the history database opens and is migrated

Exits with an error when any check fails.`,
		Example: `  incomecast doctor
  incomecast doctor -o json`,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	out := diagnose(cmd.Context(), c)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		lines := make([]string, len(out.Checks))
		for i, ch := range out.Checks {
			lines[i] = fmt.Sprintf("%s **%s**: %s", checkMark(ch), ch.Name, ch.Detail)
		}
		r.Println(output.FormatHeader(2, "Doctor") + "\n\n" + output.FormatList(lines))
	default:
		r.Println(r.Header("Doctor"))
		for _, ch := range out.Checks {
			line := fmt.Sprintf("%s %-10s %s", checkMark(ch), ch.Name, ch.Detail)
			switch {
			case !ch.OK:
				line = r.Error(line)
			case ch.Warning:
				line = r.Warning(line)
			default:
				line = r.Success(line)
			}
			r.Println(line)
		}
	}

	if !out.Healthy {
		failed := 0
		for _, ch := range out.Checks {
			if !ch.OK {
				failed++
			}
		}
		return fmt.Errorf("doctor found %d failing check(s)", failed)
	}
	return nil
}

func checkMark(ch output.DoctorCheck) string {
	switch {
	case !ch.OK:
		return "✗"
	case ch.Warning:
		return "!"
	default:
		return "✓"
	}
}

func diagnose(ctx context.Context, c *CommandContext) output.DoctorOutput {
	var checks []output.DoctorCheck
	add := func(ch output.DoctorCheck) { checks = append(checks, ch) }

	if path := config.GetConfigFileUsed(); path != "" {
		add(output.DoctorCheck{Name: "config", OK: true, Detail: path})
	} else {
		add(output.DoctorCheck{Name: "config", OK: true, Warning: true, Detail: "no config file, using defaults"})
	}

	if c.Cfg.Columns != "" {
		if _, err := os.Stat(c.Cfg.Columns); err != nil {
			add(output.DoctorCheck{Name: "columns", Detail: err.Error()})
		} else {
			add(output.DoctorCheck{Name: "columns", OK: true, Detail: c.Cfg.Columns})
		}
	}

	bundle, err := artifact.Load(c.Cfg.Artifact, c.Cfg.Columns)
	if err != nil {
		add(output.DoctorCheck{Name: "artifact", Detail: err.Error()})
	} else {
		add(output.DoctorCheck{Name: "artifact", OK: true, Detail: fmt.Sprintf("%s (%s, %d columns from %s)",
			modelName(bundle.Meta.Name, bundle.Meta.Version), bundle.Meta.Kind, len(bundle.Columns), bundle.ColumnsSource)})
		add(checkAlignment(c.Cfg.Schema(), bundle))
	}

	add(checkState(ctx, c))

	healthy := true
	for _, ch := range checks {
		healthy = healthy && ch.OK
	}
	return output.DoctorOutput{Healthy: healthy, Checks: checks}
}

// checkAlignment encodes the default form row and reports indicator
// columns the model does not know. Those inputs are silently dropped at
// prediction time.
func checkAlignment(schema *features.Schema, bundle *artifact.Bundle) output.DoctorCheck {
	record, err := schema.Parse(schema.Defaults())
	if err != nil {
		return output.DoctorCheck{Name: "form", Detail: err.Error()}
	}
	_, report, err := features.Encode(record, bundle.Columns)
	if err != nil {
		return output.DoctorCheck{Name: "form", Detail: err.Error()}
	}
	if len(report.Unknown) > 0 {
		return output.DoctorCheck{Name: "form", OK: true, Warning: true,
			Detail: "columns unknown to the model: " + strings.Join(report.Unknown, ", ")}
	}
	return output.DoctorCheck{Name: "form", OK: true,
		Detail: fmt.Sprintf("default row aligns, %d column(s) zero-filled", len(report.Missing))}
}

func checkState(ctx context.Context, c *CommandContext) output.DoctorCheck {
	if c.Cfg.StatePath == "" {
		return output.DoctorCheck{Name: "state", OK: true, Warning: true, Detail: "history disabled"}
	}
	store, err := c.OpenStore()
	if err != nil {
		return output.DoctorCheck{Name: "state", Detail: err.Error()}
	}
	defer func() { _ = store.Close() }()

	n, err := store.CountPredictions(ctx)
	if err != nil {
		return output.DoctorCheck{Name: "state", Detail: err.Error()}
	}
	return output.DoctorCheck{Name: "state", OK: true, Detail: fmt.Sprintf("%s (%d prediction(s))", c.Cfg.StatePath, n)}
}
