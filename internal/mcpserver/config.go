package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds the MCP server limits and defaults.
// Loaded at startup from environment variables via loadConfig().
type serverConfig struct {
	// MaxInlineSize bounds inline document content in bytes.
	MaxInlineSize int64
	// MaxFetchSize bounds documents fetched from URLs in bytes.
	MaxFetchSize int64
	// FetchTimeout bounds one URL fetch.
	FetchTimeout time.Duration
	// AllowPrivateIPs permits URL inputs that resolve to private addresses.
	AllowPrivateIPs bool
	// AllowFiles permits file inputs.
	AllowFiles bool
	// DefaultFormat is the get_merged format when none is given.
	DefaultFormat string
}

// loadConfig reads configuration from OASMERGE_MCP_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		MaxInlineSize:   envInt64("OASMERGE_MCP_MAX_INLINE_SIZE", 10*1024*1024),
		MaxFetchSize:    envInt64("OASMERGE_MCP_MAX_FETCH_SIZE", 10*1024*1024),
		FetchTimeout:    envDuration("OASMERGE_MCP_FETCH_TIMEOUT", 30*time.Second),
		AllowPrivateIPs: envBool("OASMERGE_MCP_ALLOW_PRIVATE_IPS", false),
		AllowFiles:      envBool("OASMERGE_MCP_ALLOW_FILES", true),
		DefaultFormat:   envFormat("OASMERGE_MCP_FORMAT", "yaml"),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
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

func envFormat(key, fallback string) string {
	v := os.Getenv(key)
	switch v {
	case "":
		return fallback
	case "yaml", "json":
		return v
	}
	slog.Warn("invalid format env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
	return fallback
}
