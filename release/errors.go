// Package release provides sentinel errors for release orchestration.
// All errors can be checked using errors.Is() for programmatic handling.
package release

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned when a support policy pattern cannot be
// compiled. This is a configuration error and aborts the run before any
// publish is attempted.
var ErrInvalidPolicy = errors.New("invalid support policy")

// ErrDuplicateDeployTag is returned when two references within one sweep
// resolve to the same deploy tag. Duplicate targets indicate a policy or
// configuration error, never an intended overwrite.
var ErrDuplicateDeployTag = errors.New("duplicate deploy tag")

// ErrUnsupportedTrigger is returned when a trigger cannot serve the requested
// execution path (e.g. a schedule trigger passed to the single-shot driver).
var ErrUnsupportedTrigger = errors.New("unsupported trigger")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
