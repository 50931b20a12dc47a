// Package publish provides the build-and-push capability consumed by the
// release orchestrator. The orchestrator treats a Publisher as atomic and
// idempotent: publishing the same deploy tag twice overwrites the registry
// entry with no further visible side effect, and only success or failure is
// observed.
package publish

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-release/release"
)

// Spec is the unit of work submitted to a Publisher: the reference being
// released and the deploy tag it resolved to.
type Spec struct {
	// Ref is the version-control reference the image is built from.
	Ref release.Reference

	// Tag is the deploy tag the image is published under.
	Tag release.DeployTag
}

// Publisher builds and pushes one image for one resolved deploy tag.
// Implementations own their retry behavior; the orchestrator never retries a
// failed publish within a run.
type Publisher interface {
	Publish(ctx context.Context, spec Spec) error
}

// Func adapts a plain function to the Publisher interface.
type Func func(ctx context.Context, spec Spec) error

// Publish implements Publisher.
func (f Func) Publish(ctx context.Context, spec Spec) error {
	return f(ctx, spec)
}
