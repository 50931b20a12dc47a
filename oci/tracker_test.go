package ocitrack

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-release/oci/internal/oras"
	"github.com/input-output-hk/catalyst-forge-release/release"
	"github.com/input-output-hk/catalyst-forge-release/sweep"
)

// fakeClient records pushes instead of talking to a registry.
type fakeClient struct {
	reference  string
	descriptor *oras.PushDescriptor
	err        error
}

func (f *fakeClient) Push(
	_ context.Context,
	reference string,
	descriptor *oras.PushDescriptor,
	_ *oras.AuthOptions,
) (digest.Digest, error) {
	f.reference = reference
	f.descriptor = descriptor
	if f.err != nil {
		return "", f.err
	}
	return digest.FromBytes(descriptor.Data), nil
}

// TestNew tests tracker construction and validation.
func TestNew(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	tracker, err := New("ghcr.io/org/server/release-records")
	require.NoError(t, err)
	assert.NotNil(t, tracker)
}

// TestTrack tests record content and addressing for a successful job.
func TestTrack(t *testing.T) {
	client := &fakeClient{}
	tracker, err := New("ghcr.io/org/server/release-records", WithClient(client))
	require.NoError(t, err)
	tracker.now = func() time.Time { return time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC) }

	job := sweep.Job{Ref: release.NewTag("v4.1.0"), Tag: "4.1.0"}
	dgst, err := tracker.Track(context.Background(), "ghcr.io/org/server", job)
	require.NoError(t, err)
	assert.NotEmpty(t, dgst)

	assert.Equal(t, "ghcr.io/org/server/release-records:4.1.0", client.reference)
	require.NotNil(t, client.descriptor)
	assert.Equal(t, MediaType, client.descriptor.MediaType)
	assert.Equal(t, ArtifactType, client.descriptor.ArtifactType)
	assert.Equal(t, "tag/v4.1.0", client.descriptor.Annotations["vnd.catalyst.release.ref"])

	var record Record
	require.NoError(t, json.Unmarshal(client.descriptor.Data, &record))
	assert.Equal(t, "ghcr.io/org/server", record.Repository)
	assert.Equal(t, "tag", record.RefKind)
	assert.Equal(t, "v4.1.0", record.RefName)
	assert.Equal(t, "4.1.0", record.DeployTag)
	assert.Equal(t, "success", record.Outcome)
	assert.Empty(t, record.Reason)
	assert.Equal(t, time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC), record.RecordedAt)
}

// TestTrackFailedJob tests that failed jobs are recorded with their reason.
func TestTrackFailedJob(t *testing.T) {
	client := &fakeClient{}
	tracker, err := New("ghcr.io/org/server/release-records", WithClient(client))
	require.NoError(t, err)

	job := sweep.Job{
		Ref: release.NewTag("v4.2.0"),
		Tag: "4.2.0",
		Err: errors.New("build step 3 failed"),
	}
	_, err = tracker.Track(context.Background(), "ghcr.io/org/server", job)
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal(client.descriptor.Data, &record))
	assert.Equal(t, "failure", record.Outcome)
	assert.Equal(t, "build step 3 failed", record.Reason)
}

// TestTrackPushFailure tests that push failures surface with the reference.
func TestTrackPushFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("unauthorized")}
	tracker, err := New("ghcr.io/org/server/release-records", WithClient(client))
	require.NoError(t, err)

	job := sweep.Job{Ref: release.NewTag("v4.1.0"), Tag: "4.1.0"}
	_, err = tracker.Track(context.Background(), "ghcr.io/org/server", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release-records:4.1.0")
}
