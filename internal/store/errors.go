package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common store errors
var (
	// ErrNotFound is returned when no saved invoice has the requested id.
	ErrNotFound = errors.New("invoice not found")

	// ErrUnknownBackend is returned when the configured backend does not exist.
	ErrUnknownBackend = errors.New("unknown store backend")

	// ErrMissingCredentials is returned when Firestore is selected but neither
	// GOOGLE_CREDENTIALS nor GOOGLE_APPLICATION_CREDENTIALS is set and no
	// default credentials are available.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrCorruptRecord is returned when a stored invoice cannot be decoded.
	ErrCorruptRecord = errors.New("stored invoice could not be decoded")
)

// StoreError wraps errors with the operation and backend that failed.
type StoreError struct {
	// Op is the operation that failed (e.g., "Save", "List").
	Op string

	// Backend is the store backend name (firestore, postgres, sqlite).
	Backend string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s failed: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapStoreError wraps an error as a StoreError if it isn't already one.
func WrapStoreError(op, backend string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err // Already wrapped
	}

	return &StoreError{Op: op, Backend: backend, Err: err}
}

// IsRetryable reports whether err is a transient failure worth retrying:
// a timeout, a cancellation, or an unreachable backend.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Canceled:
			return true
		}
	}
	return false
}
