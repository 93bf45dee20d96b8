package tool

import (
	"errors"
	"fmt"
)

// ErrFatal marks a handler fault that must abort the turn instead of being
// reported to the model (for example a missing API credential).
var ErrFatal = errors.New("fatal tool error")

// ErrInvalidArguments is wrapped by Decode failures.
var ErrInvalidArguments = errors.New("invalid arguments")

// Fatal wraps err so that callers can detect it with errors.Is(err, ErrFatal).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

// IsFatal reports whether err was produced by Fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
