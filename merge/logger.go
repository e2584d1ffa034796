package merge

import "log/slog"

// Logger is the structured logging interface used by the registry.
//
// Attributes are alternating key-value pairs, following log/slog:
//
//	logger.Info("renamed component", "category", "schemas", "from", "Pet", "to", "Pet1")
//
// Wrap a *slog.Logger with [NewSlogAdapter], or pass it to [WithSlog].
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger with the given attributes prepended to every log.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger means slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) { s.logger.Debug(msg, attrs...) }

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) { s.logger.Info(msg, attrs...) }

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) { s.logger.Warn(msg, attrs...) }

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) { s.logger.Error(msg, attrs...) }

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// logWarning writes w at the level matching its severity.
func logWarning(l Logger, w *MergeWarning) {
	attrs := []any{"warning", string(w.Category)}
	if w.Key != "" {
		attrs = append(attrs, "key", w.Key.String())
	}
	switch w.Severity {
	case SeverityInfo:
		l.Info(w.Message, attrs...)
	case SeverityError:
		l.Error(w.Message, attrs...)
	default:
		l.Warn(w.Message, attrs...)
	}
}
