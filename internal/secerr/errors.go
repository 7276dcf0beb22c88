package secerr

import (
	"errors"
	"fmt"
)

// Category names the rule that was violated.
type Category string

const (
	CategoryInvalidInput    Category = "invalid_input"
	CategoryPathTraversal   Category = "path_traversal"
	CategoryNotRepository   Category = "not_repository"
	CategorySystemPath      Category = "system_path"
	CategoryConfigTooLarge  Category = "config_too_large"
	CategoryConfigMalformed Category = "config_malformed"
	CategoryConfigInvalid   Category = "config_invalid"
	CategoryEnvFile         Category = "env_file"
	CategoryInvalidCommand  Category = "invalid_command"
	CategoryTimeout         Category = "timeout"
	CategoryProcessFailed   Category = "process_failed"
	CategoryIO              Category = "io"
	CategoryInternal        Category = "internal"
)

// Sentinel refinements that can be matched with errors.Is.
var (
	// ErrPathTraversal indicates a path resolved outside its base directory.
	ErrPathTraversal = errors.New("path traversal")

	// ErrInvalidCommand indicates a malformed subprocess argument vector.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrTimeout indicates a subprocess exceeded its deadline.
	ErrTimeout = errors.New("command timed out")
)

// SecurityError is the universal policy-violation signal.
type SecurityError struct {
	Category Category
	Message  string
	Err      error
}

// Error returns the category and the neutral message only.
func (e *SecurityError) Error() string {
	if e.Message == "" {
		return "security error: " + string(e.Category)
	}
	return fmt.Sprintf("security error (%s): %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause for diagnostics.
func (e *SecurityError) Unwrap() error {
	return e.Err
}

// New creates a SecurityError without an underlying cause.
func New(category Category, message string) *SecurityError {
	return &SecurityError{Category: category, Message: message}
}

// Wrap creates a SecurityError that keeps err as its cause.
func Wrap(category Category, message string, err error) *SecurityError {
	return &SecurityError{Category: category, Message: message, Err: err}
}

// ProcessError describes a subprocess that exited with a non-zero status.
// Stderr is retained for redacted debug logging only.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Normalize maps any error to a *SecurityError at a subsystem boundary.
// Nil stays nil.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	var se *SecurityError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, ErrTimeout) {
		return Wrap(CategoryTimeout, "command timed out", err)
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		return Wrap(CategoryProcessFailed, fmt.Sprintf("command failed with exit status %d", pe.ExitCode), err)
	}
	return Wrap(CategoryInternal, "an internal error occurred", err)
}

// CategoryOf returns the category of the first SecurityError in err's chain,
// or the empty string.
func CategoryOf(err error) Category {
	var se *SecurityError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// IsSecurityError reports whether err's chain contains a SecurityError.
func IsSecurityError(err error) bool {
	var se *SecurityError
	return errors.As(err, &se)
}

// ExitCode extracts the exit status of a ProcessError in err's chain.
func ExitCode(err error) (int, bool) {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.ExitCode, true
	}
	return 0, false
}
