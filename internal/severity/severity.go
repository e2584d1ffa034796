// Package severity provides the severity levels attached to merge warnings.
//
// Levels are ordered from least to most severe: Info < Warning < Error.
package severity

import "log/slog"

// Severity indicates how much attention a merge diagnostic needs.
type Severity int

const (
	// SeverityInfo marks a tolerated situation, e.g. an extension already
	// placed by another contribution.
	SeverityInfo Severity = iota

	// SeverityWarning marks a resolved or skipped conflict: a rename, a
	// conflicting path left out.
	SeverityWarning

	// SeverityError marks content that could not be merged at all: an
	// exhausted rename search or a section abandoned on a defect.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Level maps the severity to the slog level it is logged at.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
