// Package validation holds the shared validation error type returned by the
// domain services before any write reaches the store.
package validation

import (
	"errors"
	"strings"
)

// Error collects the field-level problems found while validating a command.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// New returns a validation Error for the given field problems, or nil when
// there are none.
func New(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

// IsValidation reports whether err is (or wraps) a validation Error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
