package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-release/publish"
	"github.com/input-output-hk/catalyst-forge-release/release"
)

// fakePublisher records every publish call and fails the tags listed in
// failOn. It tracks the maximum number of in-flight calls to verify the
// concurrency bound.
type fakePublisher struct {
	mu       sync.Mutex
	calls    []publish.Spec
	failOn   map[release.DeployTag]error
	inFlight int
	maxSeen  int
}

func (p *fakePublisher) Publish(_ context.Context, spec publish.Spec) error {
	p.mu.Lock()
	p.calls = append(p.calls, spec)
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if err, ok := p.failOn[spec.Tag]; ok {
		return err
	}
	return nil
}

func staticLister(refs ...release.Reference) Lister {
	return ListerFunc(func(context.Context) ([]release.Reference, error) {
		return refs, nil
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, pub publish.Publisher, pattern string, opts ...Option) *Orchestrator {
	t.Helper()

	opts = append(opts, WithLogger(quietLogger()))
	o, err := New(pub, release.MustSupportPolicy(pattern), "master", opts...)
	require.NoError(t, err)
	return o
}

// TestNew tests orchestrator construction and validation.
func TestNew(t *testing.T) {
	policy := release.MustSupportPolicy(`^v4\..*$`)

	_, err := New(nil, policy, "master")
	assert.Error(t, err)

	_, err = New(&fakePublisher{}, policy, "")
	assert.Error(t, err)

	// A nil policy is accepted for single-shot use but rejected by Sweep.
	o, err := New(&fakePublisher{}, nil, "master",
		WithLister(staticLister()), WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = o.Sweep(context.Background())
	assert.Error(t, err)

	o, err = New(&fakePublisher{}, policy, "master")
	require.NoError(t, err)
	assert.NotNil(t, o)
}

// TestRunOnce tests the single-shot driver across trigger variants.
func TestRunOnce(t *testing.T) {
	tests := []struct {
		name        string
		trigger     release.Trigger
		wantRef     release.Reference
		wantTag     release.DeployTag
		expectError bool
	}{
		{
			name:    "tag push publishes the stripped version",
			trigger: release.TagPush{Tag: "v4.2.0"},
			wantRef: release.NewTag("v4.2.0"),
			wantTag: "4.2.0",
		},
		{
			name:    "default branch push publishes latest",
			trigger: release.BranchPush{Branch: "master", IsDefault: true},
			wantRef: release.NewBranch("master"),
			wantTag: "latest",
		},
		{
			name:    "default flag wins over the configured branch name",
			trigger: release.BranchPush{Branch: "main", IsDefault: true},
			wantRef: release.NewBranch("main"),
			wantTag: "latest",
		},
		{
			name:    "other branch push publishes verbatim",
			trigger: release.BranchPush{Branch: "feature-x"},
			wantRef: release.NewBranch("feature-x"),
			wantTag: "feature-x",
		},
		{
			name:        "schedule trigger is rejected",
			trigger:     release.Schedule{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			o := newTestOrchestrator(t, pub, `^v4\..*$`)

			job, err := o.RunOnce(context.Background(), tt.trigger)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, release.ErrUnsupportedTrigger)
				assert.Empty(t, pub.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRef, job.Ref)
			assert.Equal(t, tt.wantTag, job.Tag)
			assert.False(t, job.Failed())
			require.Len(t, pub.calls, 1)
			assert.Equal(t, publish.Spec{Ref: tt.wantRef, Tag: tt.wantTag}, pub.calls[0])
		})
	}
}

// TestRunOnceFailure tests that a publish failure terminates the job as
// failed without an orchestration error.
func TestRunOnceFailure(t *testing.T) {
	pub := &fakePublisher{failOn: map[release.DeployTag]error{
		"4.1.0": publish.ErrPushFailed,
	}}
	o := newTestOrchestrator(t, pub, `^v4\..*$`)

	job, err := o.RunOnce(context.Background(), release.TagPush{Tag: "v4.1.0"})
	require.NoError(t, err)
	assert.True(t, job.Failed())
	assert.ErrorIs(t, job.Err, publish.ErrPushFailed)
}

// TestSweep tests policy filtering, completeness, and ordering.
func TestSweep(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, `^v4\.[1-9]+\.[0-9]+$`,
		WithLister(staticLister(
			release.NewTag("v4.2.0"),
			release.NewTag("v4.0.0"), // excluded: [1-9]+ excludes a zero minor
			release.NewTag("v4.1.0"),
			release.NewTag("v3.9.9"),
			release.NewBranch("v4.1.5"), // branches never sweep
		)),
		WithConcurrency(1),
	)

	result, err := o.Sweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Jobs, 2)
	assert.False(t, result.Failed())

	// Dispatch order is name order; sequential execution preserves it in
	// the recorded calls too.
	assert.Equal(t, release.NewTag("v4.1.0"), result.Jobs[0].Ref)
	assert.Equal(t, release.DeployTag("4.1.0"), result.Jobs[0].Tag)
	assert.Equal(t, release.NewTag("v4.2.0"), result.Jobs[1].Ref)
	assert.Equal(t, release.DeployTag("4.2.0"), result.Jobs[1].Tag)

	require.Len(t, pub.calls, 2)
	assert.Equal(t, release.DeployTag("4.1.0"), pub.calls[0].Tag)
	assert.Equal(t, release.DeployTag("4.2.0"), pub.calls[1].Tag)
}

// TestSweepIsolatesFailures tests that one failing job never prevents the
// remaining references from being attempted, and that the overall status is
// failed iff any job failed.
func TestSweepIsolatesFailures(t *testing.T) {
	pub := &fakePublisher{failOn: map[release.DeployTag]error{
		"4.1.0": publish.ErrBuildFailed,
	}}
	o := newTestOrchestrator(t, pub, `^v4\..*$`,
		WithLister(staticLister(
			release.NewTag("v4.1.0"),
			release.NewTag("v4.2.0"),
			release.NewTag("v4.3.0"),
		)),
		WithConcurrency(1),
	)

	result, err := o.Sweep(context.Background())
	require.NoError(t, err)

	// Completeness: every matching reference has a recorded outcome.
	require.Len(t, result.Jobs, 3)
	assert.Len(t, pub.calls, 3)
	assert.True(t, result.Failed())

	succeeded, failed := result.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)

	failedJob, ok := result.Job(release.NewTag("v4.1.0"))
	require.True(t, ok)
	assert.ErrorIs(t, failedJob.Err, publish.ErrBuildFailed)

	okJob, ok := result.Job(release.NewTag("v4.2.0"))
	require.True(t, ok)
	assert.False(t, okJob.Failed())
}

// TestSweepDuplicateDeployTag tests the fail-fast configuration error path:
// colliding targets abort the sweep before any publish.
func TestSweepDuplicateDeployTag(t *testing.T) {
	pub := &fakePublisher{}

	// A broad policy that admits both the release tag and a plain tag whose
	// verbatim name equals the stripped release version.
	o := newTestOrchestrator(t, pub, `4\.1\.0`,
		WithLister(staticLister(
			release.NewTag("v4.1.0"), // resolves to 4.1.0
			release.NewTag("4.1.0"),  // resolves verbatim to 4.1.0
		)),
	)

	result, err := o.Sweep(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, release.ErrDuplicateDeployTag)
	assert.Nil(t, result)
	assert.Empty(t, pub.calls)
}

// TestSweepBoundedConcurrency tests that parallel publishes never exceed the
// configured limit and that outcomes stay keyed to their references.
func TestSweepBoundedConcurrency(t *testing.T) {
	refs := make([]release.Reference, 0, 20)
	for i := range 20 {
		refs = append(refs, release.NewTag(fmt.Sprintf("v4.1.%d", i)))
	}

	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, `^v4\..*$`,
		WithLister(staticLister(refs...)),
		WithConcurrency(3),
	)

	result, err := o.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Jobs, 20)
	assert.LessOrEqual(t, pub.maxSeen, 3)

	for _, job := range result.Jobs {
		expected := release.Resolve(job.Ref, "master")
		assert.Equal(t, expected, job.Tag, "outcome keyed to wrong reference: %s", job)
	}
}

// TestSweepListerFailure tests that enumeration failure aborts the sweep.
func TestSweepListerFailure(t *testing.T) {
	boom := errors.New("remote unreachable")
	o := newTestOrchestrator(t, &fakePublisher{}, `^v4\..*$`,
		WithLister(ListerFunc(func(context.Context) ([]release.Reference, error) {
			return nil, boom
		})),
	)

	result, err := o.Sweep(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, result)
}

// TestSweepRequiresLister tests the missing-lister configuration error.
func TestSweepRequiresLister(t *testing.T) {
	o := newTestOrchestrator(t, &fakePublisher{}, `^v4\..*$`)

	_, err := o.Sweep(context.Background())
	require.Error(t, err)
}

// TestSweepNoMatches tests the empty-result edge: a sweep over zero matching
// references succeeds with zero jobs.
func TestSweepNoMatches(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, `^v9\..*$`,
		WithLister(staticLister(release.NewTag("v4.1.0"))),
	)

	result, err := o.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Jobs)
	assert.False(t, result.Failed())
	assert.Empty(t, pub.calls)
}
