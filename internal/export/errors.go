package export

import (
	"context"
	"errors"
	"fmt"
)

// Common export errors
var (
	// ErrNoRenderingSurface is returned when the print page cannot be handed
	// to a browser or other viewer.
	ErrNoRenderingSurface = errors.New("no rendering surface available for printing")

	// ErrRasterize is returned when the layout cannot be drawn to a bitmap.
	ErrRasterize = errors.New("failed to rasterize invoice")

	// ErrEncode is returned when the bitmap or PDF cannot be encoded.
	ErrEncode = errors.New("failed to encode export document")

	// ErrCanceled is returned when the export deadline passes or the caller cancels.
	ErrCanceled = errors.New("export was canceled")
)

// ExportError wraps errors with additional context about the export failure.
type ExportError struct {
	// Op is the operation that failed (e.g., "Print", "RasterPDF").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("export: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("export: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExportError creates a new ExportError with the specified operation and underlying error.
func NewExportError(op string, err error, details string) *ExportError {
	return &ExportError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapExportError wraps an error as an ExportError if it isn't already one.
func WrapExportError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return err // Already wrapped
	}

	return NewExportError(op, err, details)
}

// checkContext reports a canceled or expired context as ErrCanceled.
func checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return NewExportError(op, fmt.Errorf("%w: %w", ErrCanceled, err), "")
	}
	return nil
}
