// Package sweep provides sweep outcome aggregation.
// This file contains the collected result of one sweep invocation.
package sweep

import "github.com/input-output-hk/catalyst-forge-release/release"

// Result is the ordered collection of job outcomes for one sweep.
// It contains exactly one Job per reference that survived policy filtering,
// in dispatch (name) order, regardless of how many individual publishes
// failed. Outcomes are keyed by each Job's Reference; completion order under
// concurrency never reorders entries.
type Result struct {
	// Jobs holds every attempted job with its outcome.
	Jobs []Job
}

// Failed reports whether the sweep as a whole failed: true iff at least one
// contained job failed.
func (r *Result) Failed() bool {
	for _, job := range r.Jobs {
		if job.Failed() {
			return true
		}
	}
	return false
}

// Counts returns the number of succeeded and failed jobs.
func (r *Result) Counts() (succeeded, failed int) {
	for _, job := range r.Jobs {
		if job.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// Job returns the outcome recorded for the given reference, if any.
func (r *Result) Job(ref release.Reference) (Job, bool) {
	for _, job := range r.Jobs {
		if job.Ref == ref {
			return job, true
		}
	}
	return Job{}, false
}
