package invoice

import (
	"errors"
	"fmt"
)

// Common command decoding errors
var (
	// ErrUnknownCommand is returned when a command envelope names an op
	// that does not exist.
	ErrUnknownCommand = errors.New("unknown invoice command")

	// ErrUnknownField is returned when a command targets a field the
	// document does not have.
	ErrUnknownField = errors.New("unknown invoice field")

	// ErrMissingTarget is returned when an item or discount command has no id.
	ErrMissingTarget = errors.New("command is missing a target id")

	// ErrMalformedCommand is returned when a command cannot be parsed at all.
	ErrMalformedCommand = errors.New("malformed invoice command")
)

// CommandError wraps errors with context about the command that could not be decoded.
type CommandError struct {
	// Op is the operation that failed (e.g., "DecodeCommands", "ParseAssignment").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// Index is the position of the command in its batch, or -1.
	Index int
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invoice: %s failed at command %d: %s: %v", e.Op, e.Index, e.Details, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *CommandError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewCommandError creates a new CommandError that is not tied to a batch position.
func NewCommandError(op string, err error, details string) *CommandError {
	return &CommandError{
		Op:      op,
		Err:     err,
		Details: details,
		Index:   -1,
	}
}

// WrapCommandError wraps an error as a CommandError if it isn't already one.
func WrapCommandError(op string, index int, err error, details string) error {
	if err == nil {
		return nil
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return err // Already wrapped
	}

	wrapped := NewCommandError(op, err, details)
	wrapped.Index = index
	return wrapped
}

// FieldError reports a field name that is not valid for the targeted entity.
type FieldError struct {
	Entity string
	Field  string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Entity, e.Field)
}

// Unwrap lets errors.Is match ErrUnknownField.
func (e *FieldError) Unwrap() error {
	return ErrUnknownField
}
