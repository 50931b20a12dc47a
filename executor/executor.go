// Package executor runs the external container tooling the release
// orchestrator shells out to. It provides output capture, environment
// variable injection, retry logic, and context support for cancellation
// and timeouts.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Result holds the output and exit status from a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner defines the interface for command execution. Consumers accept this
// interface so tests can substitute a scripted fake for the real tooling.
type Runner interface {
	// Run executes program with args, applying per-call options on top of
	// the runner's defaults.
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// CommandRunner implements Runner using os/exec.
type CommandRunner struct {
	options *Options
}

// Options configures command execution behavior.
type Options struct {
	// Output handling
	CaptureStdout     bool
	CaptureStderr     bool
	RedirectToConsole bool

	// Retry configuration
	MaxRetries int
	RetryDelay time.Duration
	RetryOn    func(error) bool // Custom retry condition

	// Working directory
	WorkingDir string

	// Environment variables (appended to current env)
	Env map[string]string

	// Custom stdout/stderr writers (for advanced use cases)
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() *Options {
	return &Options{
		CaptureStdout: true,
		CaptureStderr: true,
		MaxRetries:    0,
		RetryDelay:    time.Second,
		Env:           make(map[string]string),
	}
}

// NewRunner creates a CommandRunner with the given default options.
func NewRunner(opts ...Option) *CommandRunner {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &CommandRunner{options: options}
}

// Run implements the Runner interface.
func (r *CommandRunner) Run(
	ctx context.Context,
	program string,
	args []string,
	opts ...Option,
) (*Result, error) {
	options := r.mergeOptions(opts...)

	maxAttempts := options.MaxRetries + 1
	var lastResult *Result
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := runOnce(ctx, program, args, options)
		lastResult, lastErr = result, err

		// Success or final attempt
		if err == nil || attempt == maxAttempts {
			return result, err
		}

		if options.RetryOn != nil && !options.RetryOn(err) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(options.RetryDelay):
		}
	}

	return lastResult, lastErr
}

func runOnce(ctx context.Context, program string, args []string, options *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = outputWriter(&stdoutBuf, os.Stdout, options.CaptureStdout, options.RedirectToConsole, options.StdoutWriter)
	cmd.Stderr = outputWriter(&stderrBuf, os.Stderr, options.CaptureStderr, options.RedirectToConsole, options.StderrWriter)

	err := cmd.Run()

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(err),
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed: %w", program, err)
	}
	return result, nil
}

// outputWriter assembles the writer stack for one output stream.
func outputWriter(buf *bytes.Buffer, console io.Writer, capture, redirect bool, extra io.Writer) io.Writer {
	var writers []io.Writer
	if capture {
		writers = append(writers, buf)
	}
	if redirect {
		writers = append(writers, console)
	}
	if extra != nil {
		writers = append(writers, extra)
	}
	if len(writers) == 0 {
		return nil
	}
	return io.MultiWriter(writers...)
}

// exitCode extracts the process exit code from a Run error.
// Returns -1 when the process never ran or was killed.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (r *CommandRunner) mergeOptions(opts ...Option) *Options {
	merged := *r.options
	for _, opt := range opts {
		opt(&merged)
	}
	return &merged
}

// Option functions for fluent configuration

// WithCapture configures output capture.
func WithCapture(stdout, stderr bool) Option {
	return func(o *Options) {
		o.CaptureStdout = stdout
		o.CaptureStderr = stderr
	}
}

// WithConsoleRedirect enables/disables console output.
func WithConsoleRedirect(redirect bool) Option {
	return func(o *Options) {
		o.RedirectToConsole = redirect
	}
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryOn = fn
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv adds environment variables.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithStdoutWriter sets a custom stdout writer.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets a custom stderr writer.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}
