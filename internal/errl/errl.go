// Package errl wraps errors with the call stack where they were first seen.
package errl

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error annotates err with a stack trace. A nil err stays nil.
func Error(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// Errorf formats like fmt.Errorf (including %w wrapping) and records the stack.
func Errorf(format string, args ...any) error {
	return errors.WithStack(fmt.Errorf(format, args...))
}

// Wrap annotates err with msg and a stack trace. A nil err stays nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
