// Package config loads the host configuration shared by the oasmerge CLI,
// the directory watcher and the MCP server.
//
// Values come from three layers, later layers winning: built-in defaults, an
// optional TOML file, and OASMERGE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/erraggy/oasmerge/internal/watch"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
	"github.com/erraggy/oasmerge/oaserrors"
)

// Config is the host configuration.
type Config struct {
	// Title and Version populate the master document's info object.
	Title   string `toml:"title"`
	Version string `toml:"version"`
	// OpenAPIVersion is the master document's openapi field.
	OpenAPIVersion string `toml:"openapi_version"`
	// MaxRenameAttempts bounds the suffix search for a free name.
	MaxRenameAttempts int `toml:"max_rename_attempts"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Watch  WatchConfig  `toml:"watch"`
	Output OutputConfig `toml:"output"`
}

// WatchConfig configures the directory host.
type WatchConfig struct {
	Dir      string   `toml:"dir"`
	Patterns []string `toml:"patterns"`
	Debounce Duration `toml:"debounce"`
}

// OutputConfig configures where the merged document is written.
type OutputConfig struct {
	// Path is the output file. Empty means stdout.
	Path string `toml:"path"`
	// Format is yaml or json.
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a Go duration string ("750ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	mc := merge.DefaultConfig()
	return Config{
		Title:             mc.Title,
		Version:           mc.Version,
		OpenAPIVersion:    mc.OpenAPIVersion,
		MaxRenameAttempts: mc.MaxRenameAttempts,
		LogLevel:          "info",
		Watch: WatchConfig{
			Patterns: append([]string(nil), watch.DefaultPatterns...),
			Debounce: Duration{watch.DefaultDebounce},
		},
		Output: OutputConfig{Format: string(oas.FormatYAML)},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
		if err != nil {
			return Config{}, &oaserrors.ConfigError{Option: "config_file", Value: path, Message: "cannot read", Cause: err}
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses TOML data over cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return &oaserrors.ConfigError{Option: "config_file", Message: "unknown keys", Cause: errors.New(strict.String())}
		}
		return &oaserrors.ConfigError{Option: "config_file", Message: "invalid TOML", Cause: err}
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplyEnv overrides cfg with OASMERGE_* environment variables. Invalid
// values log a warning and keep the current setting.
func (c *Config) ApplyEnv() {
	c.Title = envString("OASMERGE_TITLE", c.Title)
	c.Version = envString("OASMERGE_VERSION", c.Version)
	c.OpenAPIVersion = envString("OASMERGE_OPENAPI_VERSION", c.OpenAPIVersion)
	c.MaxRenameAttempts = envInt("OASMERGE_MAX_RENAME_ATTEMPTS", c.MaxRenameAttempts)
	c.LogLevel = envString("OASMERGE_LOG_LEVEL", c.LogLevel)
	c.Watch.Dir = envString("OASMERGE_WATCH_DIR", c.Watch.Dir)
	c.Watch.Patterns = envList("OASMERGE_WATCH_PATTERNS", c.Watch.Patterns)
	c.Watch.Debounce.Duration = envDuration("OASMERGE_WATCH_DEBOUNCE", c.Watch.Debounce.Duration)
	c.Output.Path = envString("OASMERGE_OUTPUT", c.Output.Path)
	c.Output.Format = envString("OASMERGE_OUTPUT_FORMAT", c.Output.Format)
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.MergeConfig().Validate(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := oas.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Watch.Debounce.Duration < 0 {
		return &oaserrors.ConfigError{Option: "watch.debounce", Value: c.Watch.Debounce.Duration, Message: "must not be negative"}
	}
	return nil
}

// MergeConfig returns the registry settings.
func (c Config) MergeConfig() merge.Config {
	return merge.Config{
		Title:             c.Title,
		Version:           c.Version,
		OpenAPIVersion:    c.OpenAPIVersion,
		MaxRenameAttempts: c.MaxRenameAttempts,
	}
}

// MergeOptions returns the registry options for c plus extra.
func (c Config) MergeOptions(extra ...merge.Option) []merge.Option {
	return append([]merge.Option{merge.WithConfig(c.MergeConfig())}, extra...)
}

// OutputFormat returns the parsed output format.
func (c Config) OutputFormat() oas.Format {
	f, err := oas.ParseFormat(c.Output.Format)
	if err != nil {
		return oas.FormatYAML
	}
	return f
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, &oaserrors.ConfigError{Option: "log_level", Value: c.LogLevel, Message: "must be debug, info, warn or error"}
	}
	return level, nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
