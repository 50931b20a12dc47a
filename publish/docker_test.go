package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-release/executor"
	"github.com/input-output-hk/catalyst-forge-release/release"
)

// fakeRunner is a scripted executor.Runner recording every invocation.
type fakeRunner struct {
	calls   [][]string
	results []fakeResult
}

type fakeResult struct {
	result *executor.Result
	err    error
}

func (f *fakeRunner) Run(
	_ context.Context,
	program string,
	args []string,
	_ ...executor.Option,
) (*executor.Result, error) {
	call := append([]string{program}, args...)
	f.calls = append(f.calls, call)

	if len(f.results) == 0 {
		return &executor.Result{}, nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.result, next.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNewDocker tests publisher construction and validation.
func TestNewDocker(t *testing.T) {
	_, err := NewDocker("")
	require.Error(t, err)

	pub, err := NewDocker("ghcr.io/org/server")
	require.NoError(t, err)
	assert.NotNil(t, pub)
}

// TestDockerPublish tests the build-then-push command sequence.
func TestDockerPublish(t *testing.T) {
	runner := &fakeRunner{}
	pub, err := NewDocker(
		"ghcr.io/org/server",
		WithRunner(runner),
		WithLogger(quietLogger()),
		WithBuildContext("./srv"),
		WithDockerfile("docker/Dockerfile"),
		WithBuildArgs(map[string]string{"VERSION": "4.1.0", "BASE": "alpine"}),
	)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), Spec{
		Ref: release.NewTag("v4.1.0"),
		Tag: "4.1.0",
	})
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{
		"docker", "build", "-t", "ghcr.io/org/server:4.1.0",
		"-f", "docker/Dockerfile",
		"--build-arg", "BASE=alpine",
		"--build-arg", "VERSION=4.1.0",
		"./srv",
	}, runner.calls[0])
	assert.Equal(t, []string{"docker", "push", "ghcr.io/org/server:4.1.0"}, runner.calls[1])
}

// TestDockerPublishBuildFailure tests that a failing build is classified and
// the push is never attempted.
func TestDockerPublishBuildFailure(t *testing.T) {
	runner := &fakeRunner{
		results: []fakeResult{
			{
				result: &executor.Result{Stderr: "step 3/7 failed\nno such file", ExitCode: 1},
				err:    fmt.Errorf("command docker failed"),
			},
		},
	}
	pub, err := NewDocker("ghcr.io/org/server", WithRunner(runner), WithLogger(quietLogger()))
	require.NoError(t, err)

	err = pub.Publish(context.Background(), Spec{Ref: release.NewBranch("master"), Tag: "latest"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.Contains(t, err.Error(), "no such file")
	assert.Len(t, runner.calls, 1)
}

// TestDockerPublishPushFailure tests push failure classification.
func TestDockerPublishPushFailure(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{
			name:   "auth rejection maps to ErrAuthFailed",
			stderr: "denied: requested access to the resource is denied",
			want:   ErrAuthFailed,
		},
		{
			name:   "network failure maps to ErrPushFailed",
			stderr: "dial tcp: connection refused",
			want:   ErrPushFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				results: []fakeResult{
					{result: &executor.Result{}, err: nil}, // build succeeds
					{
						result: &executor.Result{Stderr: tt.stderr, ExitCode: 1},
						err:    fmt.Errorf("command docker failed"),
					},
				},
			}
			pub, err := NewDocker("ghcr.io/org/server", WithRunner(runner), WithLogger(quietLogger()))
			require.NoError(t, err)

			err = pub.Publish(context.Background(), Spec{Ref: release.NewTag("v4.2.0"), Tag: "4.2.0"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestPublisherFunc tests the function adapter.
func TestPublisherFunc(t *testing.T) {
	var got Spec
	fn := Func(func(_ context.Context, spec Spec) error {
		got = spec
		return nil
	})

	spec := Spec{Ref: release.NewTag("v1.0.0"), Tag: "1.0.0"}
	require.NoError(t, fn.Publish(context.Background(), spec))
	assert.Equal(t, spec, got)
}
