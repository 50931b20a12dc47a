// Package publish provides the docker CLI publisher.
// This file contains the concrete build-and-push primitive: a thin
// orchestration of `docker build` and `docker push` over the executor package.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-release/executor"
)

// DockerOptions contains configuration options for the Docker publisher.
type DockerOptions struct {
	// Program is the container CLI to invoke. Defaults to "docker".
	Program string

	// BuildContext is the directory passed to the build. Defaults to ".".
	BuildContext string

	// Dockerfile is an explicit Dockerfile path. Empty uses the CLI default.
	Dockerfile string

	// BuildArgs are forwarded as --build-arg flags in sorted key order.
	BuildArgs map[string]string

	// PushRetries is the number of retries for the push step. Builds are
	// never retried; a failing build is deterministic.
	PushRetries int

	// RetryDelay is the base delay between push retries.
	RetryDelay time.Duration

	// Runner executes the CLI. Defaults to executor.NewRunner().
	Runner executor.Runner

	// Logger receives structured progress logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// DockerOption is a functional option for configuring the Docker publisher.
type DockerOption func(*DockerOptions)

// WithProgram overrides the container CLI binary (e.g. "podman").
func WithProgram(program string) DockerOption {
	return func(o *DockerOptions) { o.Program = program }
}

// WithBuildContext sets the build context directory.
func WithBuildContext(dir string) DockerOption {
	return func(o *DockerOptions) { o.BuildContext = dir }
}

// WithDockerfile sets an explicit Dockerfile path.
func WithDockerfile(path string) DockerOption {
	return func(o *DockerOptions) { o.Dockerfile = path }
}

// WithBuildArgs sets build arguments forwarded to the build step.
func WithBuildArgs(args map[string]string) DockerOption {
	return func(o *DockerOptions) { o.BuildArgs = args }
}

// WithPushRetries configures retry behavior for the push step.
func WithPushRetries(retries int, delay time.Duration) DockerOption {
	return func(o *DockerOptions) {
		o.PushRetries = retries
		o.RetryDelay = delay
	}
}

// WithRunner injects a custom command runner. Primarily used by tests to
// substitute a scripted fake for the real CLI.
func WithRunner(runner executor.Runner) DockerOption {
	return func(o *DockerOptions) { o.Runner = runner }
}

// WithLogger sets the structured logger for publish progress.
func WithLogger(logger *slog.Logger) DockerOption {
	return func(o *DockerOptions) { o.Logger = logger }
}

// Docker publishes images by shelling out to the docker CLI: one build and
// one push per deploy tag. It contends for the local build daemon, so sweeps
// should run it under bounded concurrency.
type Docker struct {
	image   string
	options *DockerOptions
}

// NewDocker creates a Docker publisher targeting the given image repository
// (e.g. "ghcr.io/org/server"). The deploy tag from each publish Spec is
// appended to form the full reference.
func NewDocker(image string, opts ...DockerOption) (*Docker, error) {
	if image == "" {
		return nil, fmt.Errorf("image repository cannot be empty")
	}

	options := &DockerOptions{
		Program:      "docker",
		BuildContext: ".",
		RetryDelay:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Runner == nil {
		options.Runner = executor.NewRunner()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Docker{image: image, options: options}, nil
}

// Publish implements Publisher. It builds the image for spec's reference and
// pushes it under spec's deploy tag.
func (d *Docker) Publish(ctx context.Context, spec Spec) error {
	reference := d.image + ":" + spec.Tag.String()
	logger := d.options.Logger.With("ref", spec.Ref.String(), "image", reference)

	logger.Info("building image")
	if err := d.build(ctx, reference); err != nil {
		return err
	}

	logger.Info("pushing image")
	if err := d.push(ctx, reference); err != nil {
		return err
	}

	logger.Info("image published")
	return nil
}

func (d *Docker) build(ctx context.Context, reference string) error {
	args := []string{"build", "-t", reference}
	if d.options.Dockerfile != "" {
		args = append(args, "-f", d.options.Dockerfile)
	}
	for _, key := range sortedKeys(d.options.BuildArgs) {
		args = append(args, "--build-arg", key+"="+d.options.BuildArgs[key])
	}
	args = append(args, d.options.BuildContext)

	result, err := d.options.Runner.Run(ctx, d.options.Program, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrBuildFailed, reference, tail(result))
	}
	return nil
}

func (d *Docker) push(ctx context.Context, reference string) error {
	result, err := d.options.Runner.Run(
		ctx,
		d.options.Program,
		[]string{"push", reference},
		executor.WithRetry(d.options.PushRetries, d.options.RetryDelay),
	)
	if err != nil {
		if isAuthFailure(result) {
			return fmt.Errorf("%w: %s: %s", ErrAuthFailed, reference, tail(result))
		}
		return fmt.Errorf("%w: %s: %s", ErrPushFailed, reference, tail(result))
	}
	return nil
}

// isAuthFailure classifies a push failure from the CLI's stderr. The docker
// and podman CLIs report registry auth rejections as "unauthorized" or
// "denied" without a distinct exit code.
func isAuthFailure(result *executor.Result) bool {
	if result == nil {
		return false
	}
	stderr := strings.ToLower(result.Stderr)
	return strings.Contains(stderr, "unauthorized") ||
		strings.Contains(stderr, "denied") ||
		strings.Contains(stderr, "authentication required")
}

// tail returns the last stderr line for error messages, keeping failures
// readable without dumping full build logs.
func tail(result *executor.Result) string {
	if result == nil {
		return "no output"
	}
	lines := strings.Split(strings.TrimSpace(result.Stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return "no output"
	}
	return last
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
