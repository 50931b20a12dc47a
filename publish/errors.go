// Package publish provides sentinel errors for publish failures.
// All errors can be checked using errors.Is() for programmatic handling.
package publish

import "errors"

// ErrBuildFailed is returned when the image build step fails.
var ErrBuildFailed = errors.New("image build failed")

// ErrPushFailed is returned when the registry push step fails after any
// publisher-internal retries are exhausted.
var ErrPushFailed = errors.New("image push failed")

// ErrAuthFailed is returned when the registry rejects the push for lack of
// valid credentials.
var ErrAuthFailed = errors.New("registry authentication failed")
