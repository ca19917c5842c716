package macro

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned by Execute for an unknown macro name.
var ErrNotRegistered = errors.New("macro: not registered")

// ExecutionError wraps any failure raised by a handler.
type ExecutionError struct {
	Macro string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("macro %q failed: %v", e.Macro, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
