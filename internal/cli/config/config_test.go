package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomecast/internal/testutil"
	"github.com/leapstack-labs/incomecast/pkg/features"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("artifact", "", "")
	fs.String("columns", "", "")
	fs.String("state", "", "")
	fs.String("output", "", "")
	fs.Bool("verbose", false, "")
	fs.Int("port", 0, "")
	fs.Bool("watch", true, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, DefaultArtifact), cfg.Artifact)
	assert.Equal(t, "", cfg.Columns)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultThresholdLabel, cfg.ThresholdLabel)
	assert.False(t, cfg.Verbose)

	ui := cfg.GetUIConfig()
	assert.Equal(t, DefaultPort, ui.Port)
	assert.True(t, ui.Watch)
	assert.False(t, ui.AutoOpen)

	assert.Equal(t, features.DefaultSchema(), cfg.Schema())
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	project := t.TempDir()
	cfgPath := testutil.WriteFile(t, project, "incomecast.yaml", `
artifact: models/adult.json
columns: models/columns.txt
state_path: ":memory:"
threshold_label: "40 000€"
ui:
  port: 9000
  auto_open: true
form:
  fields:
    - name: age
      label: Age
      kind: numeric
      min: 18
      max: 99
      default: 40
      integer: true
    - name: sex
      label: Sex
      kind: categorical
      choices:
        - {label: Woman, value: Female}
        - {label: Man, value: Male}
`)

	// load from another directory: paths stay relative to the file
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(cfgPath, newFlags())
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, project, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(project, "models", "adult.json"), cfg.Artifact)
	assert.Equal(t, filepath.Join(project, "models", "columns.txt"), cfg.Columns)
	assert.Equal(t, ":memory:", cfg.StatePath)
	assert.Equal(t, "40 000€", cfg.ThresholdLabel)

	ui := cfg.GetUIConfig()
	assert.Equal(t, 9000, ui.Port)
	assert.True(t, ui.AutoOpen)
	assert.True(t, ui.Watch, "unset keys keep their default")

	schema := cfg.Schema()
	require.Len(t, schema.Fields, 2)
	assert.Equal(t, features.KindNumeric, schema.Fields[0].Kind)
	assert.Equal(t, 99.0, schema.Fields[0].Max)
	assert.Equal(t, "Female", schema.Fields[1].Choices[0].Value)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	ResetConfig()
	project := t.TempDir()
	testutil.WriteFile(t, project, "incomecast.yml", "artifact: m.toml\n")
	sub := filepath.Join(project, "a", "b")
	testutil.WriteFile(t, sub, ".keep", "")
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "m.toml"), cfg.Artifact)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	project := t.TempDir()
	cfgPath := testutil.WriteFile(t, project, "incomecast.yaml", "artifact: from-file.json\nui:\n  port: 9000\noutput: text\n")
	workdir := t.TempDir()
	t.Chdir(workdir)

	t.Setenv("INCOMECAST_UI_PORT", "9100")
	t.Setenv("INCOMECAST_OUTPUT", "markdown")
	t.Setenv("INCOMECAST_THRESHOLD_LABEL", "50k")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--artifact", "flag.json", "--output", "json", "--watch=false"}))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	// flag beats env beats file
	assert.Equal(t, filepath.Join(workdir, "flag.json"), cfg.Artifact, "flag paths resolve against the working directory")
	assert.Equal(t, "json", cfg.OutputFormat)
	// env beats file
	assert.Equal(t, 9100, cfg.GetUIConfig().Port)
	assert.Equal(t, "50k", cfg.ThresholdLabel)
	assert.False(t, cfg.GetUIConfig().Watch)
}

func TestLoadConfig_BadFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "incomecast.yaml", "artifact: [unclosed\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{"valid", Config{Artifact: "m.json", OutputFormat: "auto"}, ""},
		{"no artifact", Config{}, "artifact is required"},
		{"bad output", Config{Artifact: "m.json", OutputFormat: "xml"}, "invalid output format"},
		{"bad port", Config{Artifact: "m.json", UI: &UIConfig{Port: 70000}}, "out of range"},
		{
			"bad form",
			Config{Artifact: "m.json", Form: &features.Schema{Fields: []features.Field{{Name: "x", Kind: "text"}}}},
			"invalid form schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateFiles(t *testing.T) {
	dir := t.TempDir()
	artifact := testutil.WriteFile(t, dir, "m.json", "{}")

	assert.NoError(t, (&Config{Artifact: artifact}).ValidateFiles())
	assert.ErrorContains(t, (&Config{Artifact: filepath.Join(dir, "none.json")}).ValidateFiles(), "artifact does not exist")
	assert.ErrorContains(t, (&Config{Artifact: artifact, Columns: filepath.Join(dir, "c.txt")}).ValidateFiles(), "columns file does not exist")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "artifact", envKey("INCOMECAST_ARTIFACT"))
	assert.Equal(t, "state_path", envKey("INCOMECAST_STATE_PATH"))
	assert.Equal(t, "ui.auto_open", envKey("INCOMECAST_UI_AUTO_OPEN"))
}

func TestGetLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestLoadConfig_PostgresStateIsNotAPath(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	dsn := "postgres://incomecast@db.internal:5432/history?sslmode=disable"

	flags := newFlags()
	require.NoError(t, flags.Set("state", dsn))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, dsn, cfg.StatePath)
}

func TestResolvePathRelativeTo(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{":memory:", ":memory:"},
		{"postgres://h/db", "postgres://h/db"},
		{"/abs/model.json", "/abs/model.json"},
		{"model.json", "/project/model.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolvePathRelativeTo(tt.path, "/project"), tt.path)
	}
}
