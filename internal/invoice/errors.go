package invoice

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is returned when a Normalizer cannot be built from the
// supplied rules.
var ErrInvalidRules = errors.New("invalid normalization rules")

// RulesError wraps errors raised while preparing normalization rules.
type RulesError struct {
	// Op is the operation that failed (e.g., "New").
	Op string

	// Err is the underlying error.
	Err error

	// Details names the rule set at fault.
	Details string
}

// Error implements the error interface.
func (e *RulesError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RulesError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidRules for every RulesError.
func (e *RulesError) Is(target error) bool {
	return target == ErrInvalidRules || errors.Is(e.Err, target)
}

// WrapRulesError wraps an error as a RulesError if it isn't already one.
func WrapRulesError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var rulesErr *RulesError
	if errors.As(err, &rulesErr) {
		return err
	}

	return &RulesError{Op: op, Err: err, Details: details}
}
