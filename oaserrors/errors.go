// Package oaserrors provides structured error types for oasmerge.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing hosts to distinguish a caller mistake from a
// malformed contribution or an exhausted rename search.
//
// # Error Categories
//
//   - PreconditionError: nil contribution or document, double add
//   - ParseError: YAML/JSON parsing failures of a contribution document
//   - ResourceLimitError: a bounded search (rename suffixes) ran out
//   - ConfigError: invalid registry options or host configuration
//
// # Usage with errors.Is
//
//	_, err := reg.Add(c)
//	if errors.Is(err, oaserrors.ErrPrecondition) {
//	    // caller bug: fix the arguments, do not retry
//	}
package oaserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrPrecondition indicates the caller violated an API precondition.
	ErrPrecondition = errors.New("precondition violated")

	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// PreconditionError is returned when a registry call receives arguments it
// cannot act on. It is the only error Add and Remove ever return.
type PreconditionError struct {
	// Op is the registry operation ("add" or "remove")
	Op string
	// Contribution is the label of the offending contribution, if known
	Contribution string
	// Message describes the violated precondition
	Message string
}

// Error returns a human-readable error message.
func (e *PreconditionError) Error() string {
	msg := "precondition violated"
	if e.Op != "" {
		msg += " in " + e.Op
	}
	if e.Contribution != "" {
		msg += fmt.Sprintf(" (contribution %q)", e.Contribution)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// ParseError represents a failure to parse a contributed document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ResourceLimitError represents a bounded search that ran out of attempts.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded, e.g. "rename_attempts"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Subject names the item being processed, e.g. "components/schemas/Pet"
	Subject string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d)", e.Limit)
	}
	if e.Subject != "" {
		msg += " for " + e.Subject
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
