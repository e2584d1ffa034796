package merge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/erraggy/oasmerge/oas"
	"github.com/erraggy/oasmerge/oaserrors"
)

// DefaultMaxRenameAttempts bounds the suffix search for a free name.
const DefaultMaxRenameAttempts = 4096

// Config holds the settings of a Registry.
type Config struct {
	// Title is the master document's info.title.
	Title string
	// Version is the master document's info.version.
	Version string
	// OpenAPIVersion is the master document's openapi field. Must be 3.x.
	OpenAPIVersion string
	// MaxRenameAttempts is the number of suffixed names tried before an item
	// is dropped with a WarnRenameExhausted warning.
	MaxRenameAttempts int
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		Title:             "Merged API",
		Version:           "1.0.0",
		OpenAPIVersion:    "3.0.3",
		MaxRenameAttempts: DefaultMaxRenameAttempts,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxRenameAttempts < 1 {
		return &oaserrors.ConfigError{Option: "max_rename_attempts", Value: c.MaxRenameAttempts, Message: "must be positive"}
	}
	if !strings.HasPrefix(c.OpenAPIVersion, "3.") {
		return &oaserrors.ConfigError{Option: "openapi_version", Value: c.OpenAPIVersion, Message: "must be an OpenAPI 3.x version"}
	}
	return nil
}

// Option is a function that configures a Registry
type Option func(*registryConfig) error

// registryConfig holds configuration collected from options
type registryConfig struct {
	config Config
	info   *oas.Info
	logger Logger
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(rc *registryConfig) error {
		rc.config = cfg
		return nil
	}
}

// WithMaxRenameAttempts sets the rename ceiling.
func WithMaxRenameAttempts(n int) Option {
	return func(rc *registryConfig) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "max_rename_attempts", Value: n, Message: "must be positive"}
		}
		rc.config.MaxRenameAttempts = n
		return nil
	}
}

// WithOpenAPIVersion sets the master document's openapi field.
func WithOpenAPIVersion(v string) Option {
	return func(rc *registryConfig) error {
		rc.config.OpenAPIVersion = v
		return nil
	}
}

// WithInfo sets the master document's info object. It takes precedence over
// Config.Title and Config.Version.
func WithInfo(info *oas.Info) Option {
	return func(rc *registryConfig) error {
		if info == nil {
			return &oaserrors.ConfigError{Option: "info", Message: "must not be nil"}
		}
		rc.info = info
		return nil
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l Logger) Option {
	return func(rc *registryConfig) error {
		if l == nil {
			l = NopLogger{}
		}
		rc.logger = l
		return nil
	}
}

// WithSlog logs through a *slog.Logger.
func WithSlog(l *slog.Logger) Option {
	return WithLogger(NewSlogAdapter(l))
}

func applyOptions(opts ...Option) (*registryConfig, error) {
	rc := &registryConfig{
		config: DefaultConfig(),
		logger: NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(rc); err != nil {
			return nil, err
		}
	}
	if err := rc.config.Validate(); err != nil {
		return nil, err
	}
	if rc.info == nil {
		rc.info = &oas.Info{Title: rc.config.Title, Version: rc.config.Version}
	}
	return rc, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts ...Option) *Registry {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("merge: %v", err))
	}
	return r
}
