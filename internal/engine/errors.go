package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a numeric parameter, kind or design extent the
	// engine cannot work with. Nothing is built when it is returned.
	ErrInvalidInput = errors.New("engine: invalid input")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
