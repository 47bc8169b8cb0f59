package errors

import (
	"errors"
	"fmt"
)

// Exit codes for repolens
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitRootNotFound     = 2
	ExitRootUnreadable   = 3
	ExitConfigError      = 4
	ExitCloneFailed      = 5
	ExitGenerationFailed = 6
	ExitOutputFailed     = 7
)

// Error is the base error type for repolens
type Error struct {
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *Error) ExitCode() int {
	return e.Code
}

// New creates a new Error
func New(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an Error
func Wrap(code int, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// RootNotFound returns an error for a missing or non-directory analysis root
func RootNotFound(path string) *Error {
	return New(ExitRootNotFound, fmt.Sprintf("analysis root not found: %s", path))
}

// RootUnreadable returns an error for an analysis root that cannot be listed
func RootUnreadable(path string, cause error) *Error {
	return Wrap(ExitRootUnreadable, fmt.Sprintf("analysis root is not readable: %s", path), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *Error {
	return Wrap(ExitConfigError, message, cause)
}

// CloneFailed returns an error for repository acquisition failures
func CloneFailed(url string, cause error) *Error {
	return Wrap(ExitCloneFailed, fmt.Sprintf("failed to clone %s", url), cause)
}

// GenerationFailed returns an error for language model failures
func GenerationFailed(provider string, cause error) *Error {
	return Wrap(ExitGenerationFailed, fmt.Sprintf("%s generation failed", provider), cause)
}

// OutputFailed returns an error when the rendered output cannot be written
func OutputFailed(path string, cause error) *Error {
	return Wrap(ExitOutputFailed, fmt.Sprintf("failed to write %s", path), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *Error {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var rlErr *Error
	if errors.As(err, &rlErr) {
		return rlErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
