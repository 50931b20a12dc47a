// Package git provides sentinel errors for repository operations.
// All errors can be checked using errors.Is() for programmatic handling.
package git

import (
	"errors"
	"fmt"
)

// ErrRepoMissing is returned when no git repository exists at the given path.
var ErrRepoMissing = errors.New("repository does not exist")

// ErrResolveFailed is returned when a reference cannot be resolved
// (e.g. HEAD is detached or the repository has no commits).
var ErrResolveFailed = errors.New("cannot resolve reference")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
