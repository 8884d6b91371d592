package config

import (
	"fmt"
	"os"
	"slices"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Artifact == "" {
		return fmt.Errorf("artifact is required")
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %v)", c.OutputFormat, OutputFormats)
	}
	if ui := c.GetUIConfig(); ui.Port < 0 || ui.Port > 65535 {
		return fmt.Errorf("ui.port %d is out of range", ui.Port)
	}
	if c.Form != nil && len(c.Form.Fields) > 0 {
		if err := c.Form.Validate(); err != nil {
			return fmt.Errorf("invalid form schema: %w", err)
		}
	}
	return nil
}

// ValidateFiles checks that the artifact (and columns file, if set) exist.
func (c *Config) ValidateFiles() error {
	if _, err := os.Stat(c.Artifact); os.IsNotExist(err) {
		return fmt.Errorf("artifact does not exist: %s\nHint: use --artifact or set artifact in incomecast.yaml", c.Artifact)
	}
	if c.Columns != "" {
		if _, err := os.Stat(c.Columns); os.IsNotExist(err) {
			return fmt.Errorf("columns file does not exist: %s", c.Columns)
		}
	}
	return nil
}
