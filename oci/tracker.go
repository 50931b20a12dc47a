// Package ocitrack records releases as OCI artifacts.
// Every successful publish can be tracked by pushing a small JSON release
// record next to the image, making the release history queryable from the
// registry itself.
package ocitrack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/input-output-hk/catalyst-forge-release/oci/internal/oras"
	"github.com/input-output-hk/catalyst-forge-release/sweep"
)

// MediaType is the media type of the release record blob.
const MediaType = "application/vnd.catalyst.release.record.v1+json"

// ArtifactType identifies release record manifests in the registry.
const ArtifactType = "application/vnd.catalyst.release.record.v1"

// Record is the JSON document pushed for one publish attempt.
type Record struct {
	// Repository is the image repository the release was published to.
	Repository string `json:"repository"`

	// RefKind and RefName identify the version-control reference.
	RefKind string `json:"ref_kind"`
	RefName string `json:"ref_name"`

	// DeployTag is the tag the image was published under.
	DeployTag string `json:"deploy_tag"`

	// Outcome is "success" or "failure".
	Outcome string `json:"outcome"`

	// Reason carries the publish error for failed jobs.
	Reason string `json:"reason,omitempty"`

	// RecordedAt is when the record was created.
	RecordedAt time.Time `json:"recorded_at"`
}

// Tracker pushes release records to an OCI registry.
// Tracking is best-effort reporting: callers log tracker failures but never
// let them change a publish outcome.
type Tracker struct {
	// repository is the record repository (e.g. "ghcr.io/org/server/release-records").
	repository string

	options *Options
	now     func() time.Time
}

// New creates a Tracker pushing records to the given repository path.
func New(repository string, opts ...Option) (*Tracker, error) {
	if repository == "" {
		return nil, fmt.Errorf("record repository cannot be empty")
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Client == nil {
		options.Client = &oras.DefaultClient{}
	}

	return &Tracker{
		repository: repository,
		options:    options,
		now:        time.Now,
	}, nil
}

// Track pushes a record for one terminated job, tagged with the job's deploy
// tag. It returns the manifest digest of the pushed record.
func (t *Tracker) Track(ctx context.Context, imageRepo string, job sweep.Job) (digest.Digest, error) {
	record := Record{
		Repository: imageRepo,
		RefKind:    job.Ref.Kind.String(),
		RefName:    job.Ref.Name,
		DeployTag:  job.Tag.String(),
		Outcome:    "success",
		RecordedAt: t.now().UTC(),
	}
	if job.Failed() {
		record.Outcome = "failure"
		record.Reason = job.Err.Error()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode release record: %w", err)
	}

	reference := t.repository + ":" + job.Tag.String()
	descriptor := &oras.PushDescriptor{
		MediaType:    MediaType,
		ArtifactType: ArtifactType,
		Data:         data,
		Annotations: map[string]string{
			"vnd.catalyst.release.ref": job.Ref.String(),
		},
	}

	dgst, err := t.options.Client.Push(ctx, reference, descriptor, t.options.Auth)
	if err != nil {
		return "", fmt.Errorf("failed to push release record %s: %w", reference, err)
	}
	return dgst, nil
}
