package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/incomecast/internal/ui"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the prediction web form",
		Long: `Start a local web server presenting the prediction form.

The server provides:
- The prediction form, remembering the last submitted values
- Prediction history with live updates
- A /healthz endpoint reporting the loaded model

When --watch is set the artifact is reloaded whenever it changes on disk.`,
		Example: `  # Start on the default port
  incomecast serve

  # Start on a custom port and open the browser
  incomecast serve --port 3000 --open

  # Serve a specific artifact without history
  incomecast serve --artifact model.yaml --state ""`,
		RunE: runServe,
	}

	// These override the ui section of the config file.
	cmd.Flags().Int("port", 0, "Port to serve on (default: 8501)")
	cmd.Flags().String("host", "", "Interface to bind (default: all)")
	cmd.Flags().Bool("watch", true, "Reload the artifact when it changes")
	cmd.Flags().Bool("open", false, "Open the form in the default browser")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := NewCommandContext(cmd)
	uiCfg := c.Cfg.GetUIConfig()

	provider := c.NewProvider()
	if _, err := provider.Current(); err != nil {
		// The form still starts and shows the load error.
		c.Renderer.Println(c.Renderer.Warning(fmt.Sprintf("Warning: %v", err)))
	}

	store, err := c.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	notify := notifier.New()
	service, err := c.NewService(provider, store, func(*core.Prediction) { notify.Broadcast() })
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Service:        service,
		Provider:       provider,
		Store:          store,
		Notifier:       notify,
		Host:           uiCfg.Host,
		Port:           uiCfg.Port,
		Watch:          uiCfg.Watch,
		SessionSecret:  uiCfg.SessionSecret,
		ThresholdLabel: c.ThresholdLabel(),
		Logger:         c.Logger,
	})

	if uiCfg.AutoOpen {
		go openBrowser(server.URL())
	}

	c.Renderer.Printf("Serving the prediction form on %s\n", server.URL())
	c.Renderer.Println(c.Renderer.Muted("Press Ctrl+C to stop"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	case "linux":
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
