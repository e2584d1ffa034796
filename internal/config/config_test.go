package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmerge/internal/watch"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
	"github.com/erraggy/oasmerge/oaserrors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oasmerge.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, merge.DefaultConfig(), cfg.MergeConfig())
	assert.Equal(t, watch.DefaultDebounce, cfg.Watch.Debounce.Duration)
	assert.Equal(t, watch.DefaultPatterns, cfg.Watch.Patterns)
	assert.Equal(t, oas.FormatYAML, cfg.OutputFormat())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
title = "Gateway"
version = "2.1.0"
openapi_version = "3.1.0"
max_rename_attempts = 64
log_level = "debug"

[watch]
dir = "specs"
patterns = ["*.yaml"]
debounce = "250ms"

[output]
path = "merged.json"
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Gateway", cfg.Title)
	assert.Equal(t, "2.1.0", cfg.Version)
	assert.Equal(t, "3.1.0", cfg.OpenAPIVersion)
	assert.Equal(t, 64, cfg.MaxRenameAttempts)
	assert.Equal(t, "specs", cfg.Watch.Dir)
	assert.Equal(t, []string{"*.yaml"}, cfg.Watch.Patterns)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce.Duration)
	assert.Equal(t, "merged.json", cfg.Output.Path)
	assert.Equal(t, oas.FormatJSON, cfg.OutputFormat())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `title = "Only title"`))
	require.NoError(t, err)
	assert.Equal(t, "Only title", cfg.Title)
	assert.Equal(t, merge.DefaultMaxRenameAttempts, cfg.MaxRenameAttempts)
	assert.Equal(t, watch.DefaultDebounce, cfg.Watch.Debounce.Duration)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		option  string
	}{
		{"unknown key", `colour = "blue"`, "config_file"},
		{"invalid toml", `title = `, "config_file"},
		{"bad duration", "[watch]\ndebounce = \"soon\"", "config_file"},
		{"zero rename attempts", `max_rename_attempts = 0`, "max_rename_attempts"},
		{"swagger", `openapi_version = "2.0"`, "openapi_version"},
		{"log level", `log_level = "chatty"`, "log_level"},
		{"output format", "[output]\nformat = \"xml\"", "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig))
			var ce *oaserrors.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OASMERGE_TITLE", "From Env")
	t.Setenv("OASMERGE_MAX_RENAME_ATTEMPTS", "12")
	t.Setenv("OASMERGE_LOG_LEVEL", "warn")
	t.Setenv("OASMERGE_WATCH_DIR", "/srv/specs")
	t.Setenv("OASMERGE_WATCH_PATTERNS", "*.yaml, api/*.json ,")
	t.Setenv("OASMERGE_WATCH_DEBOUNCE", "2s")
	t.Setenv("OASMERGE_OUTPUT", "out.yaml")

	cfg, err := Load(writeConfig(t, `title = "From File"`))
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Title, "environment wins over the file")
	assert.Equal(t, 12, cfg.MaxRenameAttempts)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/srv/specs", cfg.Watch.Dir)
	assert.Equal(t, []string{"*.yaml", "api/*.json"}, cfg.Watch.Patterns)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce.Duration)
	assert.Equal(t, "out.yaml", cfg.Output.Path)
}

func TestApplyEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("OASMERGE_MAX_RENAME_ATTEMPTS", "-3")
	t.Setenv("OASMERGE_WATCH_DEBOUNCE", "later")
	t.Setenv("OASMERGE_WATCH_PATTERNS", " , ")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, merge.DefaultMaxRenameAttempts, cfg.MaxRenameAttempts)
	assert.Equal(t, watch.DefaultDebounce, cfg.Watch.Debounce.Duration)
	assert.Equal(t, watch.DefaultPatterns, cfg.Watch.Patterns)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Title = "Encoded"
	cfg.Watch.Debounce = Duration{time.Second}

	data, err := Encode(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1s")

	var got Config
	require.NoError(t, Decode(data, &got))
	assert.Equal(t, cfg, got)
}

func TestMergeOptions(t *testing.T) {
	cfg := Default()
	cfg.Title = "Configured"
	cfg.MaxRenameAttempts = 3

	reg, err := merge.New(cfg.MergeOptions(merge.WithOpenAPIVersion("3.1.0"))...)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Config().MaxRenameAttempts)
	assert.Equal(t, "Configured", reg.Snapshot().Document.Info.Title)
	assert.Equal(t, "3.1.0", reg.Snapshot().Document.OpenAPI)
}
