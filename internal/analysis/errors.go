package analysis

import (
	"errors"
	"fmt"
)

// Common decoding errors
var (
	// ErrEmptyInput is returned when there is nothing to decode.
	ErrEmptyInput = errors.New("empty analysis input")

	// ErrUnsupportedInput is returned when the payload is not a recognizable
	// analyze result.
	ErrUnsupportedInput = errors.New("unsupported analysis input")
)

// DecodeError wraps errors with the decoding step that failed.
type DecodeError struct {
	// Op is the operation that failed (e.g., "DecodeAzure").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("analysis: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("analysis: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WrapDecodeError wraps an error as a DecodeError if it isn't already one.
func WrapDecodeError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return err
	}
	return &DecodeError{Op: op, Err: err, Details: details}
}
