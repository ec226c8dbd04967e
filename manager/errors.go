package manager

import (
	"errors"
	"fmt"
)

// ErrNotFound signals the requested manager does not exist.
var ErrNotFound = errors.New("manager: not found")

// ValidationError reports a malformed field on write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manager: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
