// Package config loads incomecast configuration from defaults, an
// incomecast.yaml file, INCOMECAST_ environment variables and flags.
package config

import (
	"github.com/leapstack-labs/incomecast/pkg/features"
)

// UIConfig holds configuration for the web form server.
type UIConfig struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// Default configuration values.
const (
	DefaultArtifact       = "model.json"
	DefaultStateFile      = ".incomecast/state.db"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultThresholdLabel = "50 000$"
	DefaultPort           = 8501
	DefaultSessionSecret  = "incomecast-dev-secret-change-in-production" //nolint:gosec // development fallback
)

// Config file names searched for, in order.
var configFileNames = []string{"incomecast.yaml", "incomecast.yml"}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Host:          "",
		Port:          DefaultPort,
		AutoOpen:      false,
		Watch:         true,
		SessionSecret: DefaultSessionSecret,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	// Artifact is the serialized model file (.json, .yaml, .yml or .toml).
	Artifact string `koanf:"artifact"`
	// Columns optionally overrides the reference column list of the artifact.
	Columns string `koanf:"columns"`
	// StatePath is the prediction history database; empty disables history.
	StatePath      string           `koanf:"state_path"`
	Verbose        bool             `koanf:"verbose"`
	OutputFormat   string           `koanf:"output"`
	ThresholdLabel string           `koanf:"threshold_label"`
	UI             *UIConfig        `koanf:"ui"`
	Form           *features.Schema `koanf:"form"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.SessionSecret == "" {
		ui.SessionSecret = DefaultSessionSecret
	}
	return &ui
}

// Schema returns the configured form schema, or the default income form.
func (c *Config) Schema() *features.Schema {
	if c.Form == nil || len(c.Form.Fields) == 0 {
		return features.DefaultSchema()
	}
	return c.Form
}
