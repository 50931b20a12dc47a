// Package sweep provides the single-shot driver and the rebuild-sweep
// orchestrator: the decision logic that turns pipeline triggers into
// (reference, deploy tag) publish attempts and aggregates their outcomes.
package sweep

import "github.com/input-output-hk/catalyst-forge-release/release"

// Job is one resolved publish attempt: the pairing of a version-control
// reference with its deploy tag, terminated by the Publisher's outcome.
type Job struct {
	// Ref is the reference the image was built from.
	Ref release.Reference

	// Tag is the deploy tag the image was published under.
	Tag release.DeployTag

	// Err is the Publisher's failure, nil on success. The cause is opaque to
	// the orchestrator and forwarded as-is for reporting.
	Err error
}

// Failed reports whether the publish attempt failed.
func (j Job) Failed() bool {
	return j.Err != nil
}

// String returns the job in "ref -> tag" form for logs and reports.
func (j Job) String() string {
	return j.Ref.String() + " -> " + j.Tag.String()
}
