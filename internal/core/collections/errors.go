package collections

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when the game is not in the given list.
var ErrItemNotFound = errors.New("item not found in list")

// ValidationError reports malformed collection input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
