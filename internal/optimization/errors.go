package optimization

import (
	"errors"
	"fmt"
)

// ValidationError reports a bad input detected before any iteration runs.
// It is the only error class the engine returns for malformed requests; all
// per-iteration anomalies are recorded as Conditions instead.
type ValidationError struct {
	// Field is the offending parameter, e.g. "grad_tol" or "x0".
	Field string
	// Message describes why the value was rejected.
	Message string
}

// Error returns the string representation of the error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// errNonDescent is returned by the line search when the supplied direction
// does not point downhill. The engine recovers by substituting the steepest
// descent direction for that iteration.
var errNonDescent = errors.New("optimization: direction is not a descent direction")
