package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Fill the prediction form in the terminal",
		Long: `Open an interactive terminal form with the same fields as the web form.

Keys: ↑/↓ move between fields, ←/→ change the value, enter predicts,
r restores defaults, q quits.`,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	c := NewCommandContext(cmd)

	store, err := c.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	service, err := c.NewService(c.NewProvider(), store, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, service, c.ThresholdLabel(), cmd.InOrStdin(), cmd.OutOrStdout())
}
