package errors

import (
	stderrors "errors"
	"fmt"
	"io"
)

// EngineError is the interface implemented by all recoverable engine errors.
// Invariant violations are not EngineErrors: they abort through contract assertions.
type EngineError interface {
	error         // Embed the standard error interface
	Kind() string // e.g., "NotImplemented", "Config"
	// Message returns the specific error message without the kind prefix.
	Message() string
	// Unwrap supports error wrapping (errors.Is/As).
	Unwrap() error
}

// ErrNotImplemented is matched by every NotImplementedError via errors.Is.
var ErrNotImplemented = stderrors.New("not implemented")

// --- Concrete Error Types ---

// NotImplementedError reports an algorithm that this engine intentionally leaves
// unimplemented. Call sites must handle it instead of using a fallback value.
type NotImplementedError struct {
	Feature string // e.g. "Object(primitive)", "accessor call"
	Cause   error  // Underlying cause, if any
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("NotImplemented Error: %s", e.Feature)
}
func (e *NotImplementedError) Kind() string    { return "NotImplemented" }
func (e *NotImplementedError) Message() string { return e.Feature }
func (e *NotImplementedError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrNotImplemented
}
func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }
func (e *NotImplementedError) CausedBy(cause error) *NotImplementedError {
	e.Cause = cause
	return e
}

// NotImplemented constructs a NotImplementedError for the named feature.
func NotImplemented(format string, args ...any) *NotImplementedError {
	return &NotImplementedError{Feature: fmt.Sprintf(format, args...)}
}

// ConfigError represents an invalid or unreadable engine configuration.
type ConfigError struct {
	Path  string // Empty when parsed from memory
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("Config Error in %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("Config Error: %s", e.Msg)
}
func (e *ConfigError) Kind() string    { return "Config" }
func (e *ConfigError) Message() string { return e.Msg }
func (e *ConfigError) Unwrap() error   { return e.Cause }
func (e *ConfigError) CausedBy(cause error) *ConfigError {
	e.Cause = cause
	return e
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// --- Error Reporting ---

// DisplayErrors prints engine errors to w, one per line, prefixed by their kind.
func DisplayErrors(w io.Writer, errs []EngineError) {
	for _, err := range errs {
		fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Message())
		if cause := err.Unwrap(); cause != nil && cause != ErrNotImplemented {
			fmt.Fprintf(w, "  caused by: %v\n", cause)
		}
	}
}
