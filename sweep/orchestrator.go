// Package sweep provides the release orchestrator.
// This file contains the single-shot driver and the scheduled rebuild sweep.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-release/publish"
	"github.com/input-output-hk/catalyst-forge-release/release"
)

// DefaultConcurrency bounds parallel publishes within a sweep. Publishers
// contend for a shared build daemon and registry, so the pool stays small.
const DefaultConcurrency = 2

// Lister enumerates tag references visible in version control. It is the
// injected source-control query capability; the orchestrator performs no
// version-control I/O of its own.
type Lister interface {
	ListTags(ctx context.Context) ([]release.Reference, error)
}

// ListerFunc adapts a plain function to the Lister interface.
type ListerFunc func(ctx context.Context) ([]release.Reference, error)

// ListTags implements Lister.
func (f ListerFunc) ListTags(ctx context.Context) ([]release.Reference, error) {
	return f(ctx)
}

// Options contains configuration options for the Orchestrator.
type Options struct {
	// Lister enumerates historical tags for sweeps. Required for Sweep,
	// unused by RunOnce.
	Lister Lister

	// Concurrency bounds parallel jobs within a sweep.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// Logger receives structured progress logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option is a functional option for configuring the Orchestrator.
type Option func(*Options)

// WithLister injects the tag enumeration capability used by sweeps.
func WithLister(lister Lister) Option {
	return func(o *Options) { o.Lister = lister }
}

// WithConcurrency bounds the number of concurrent jobs within a sweep.
// Values below 1 fall back to sequential execution.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithLogger sets the structured logger for orchestration progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Orchestrator routes pipeline triggers to publish attempts: one per push
// trigger, or one per policy-matching historical tag for scheduled sweeps.
type Orchestrator struct {
	publisher     publish.Publisher
	policy        *release.SupportPolicy
	defaultBranch string
	options       *Options
}

// New creates an Orchestrator publishing through publisher.
// policy selects sweep-eligible tags and may be nil when only the
// single-shot path is used; defaultBranch is the branch whose builds map to
// the default deploy tag.
func New(
	publisher publish.Publisher,
	policy *release.SupportPolicy,
	defaultBranch string,
	opts ...Option,
) (*Orchestrator, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if defaultBranch == "" {
		return nil, fmt.Errorf("default branch cannot be empty")
	}

	options := &Options{Concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(options)
	}
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Orchestrator{
		publisher:     publisher,
		policy:        policy,
		defaultBranch: defaultBranch,
		options:       options,
	}, nil
}

// RunOnce executes the single-shot path: it extracts the reference from a
// push trigger, resolves its deploy tag, and publishes once. The returned
// Job carries the publish outcome; the error return is reserved for triggers
// that cannot serve this path (e.g. Schedule).
func (o *Orchestrator) RunOnce(ctx context.Context, trigger release.Trigger) (Job, error) {
	ref, err := release.TriggerRef(trigger)
	if err != nil {
		return Job{}, err
	}

	// A push event flagged as the default branch wins over the configured
	// name; the version-control system is authoritative for its own default.
	defaultBranch := o.defaultBranch
	if bp, ok := trigger.(release.BranchPush); ok && bp.IsDefault {
		defaultBranch = bp.Branch
	}

	return o.runJob(ctx, ref, defaultBranch), nil
}

// Sweep executes the scheduled path: it enumerates all historical tags,
// filters them through the support policy, and publishes each surviving
// reference with bounded concurrency. Every attempted job's outcome is
// retained; a single failing rebuild never prevents the remaining ones.
//
// The error return covers only conditions that abort the sweep before any
// publish: enumeration failure or a duplicate deploy tag (a configuration
// error). Once building starts the sweep runs to completion over the full
// filtered set.
func (o *Orchestrator) Sweep(ctx context.Context) (*Result, error) {
	if o.options.Lister == nil {
		return nil, fmt.Errorf("sweep requires a tag lister")
	}
	if o.policy == nil {
		return nil, fmt.Errorf("sweep requires a support policy")
	}

	logger := o.options.Logger

	refs, err := o.options.Lister.ListTags(ctx)
	if err != nil {
		return nil, release.WrapError(err, "failed to enumerate tags")
	}
	logger.Debug("enumerated tags", "total", len(refs))

	selected := o.filter(refs)
	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	logger.Info("sweep selected references", "policy", o.policy.String(), "matched", len(selected))

	// Resolve every target up front: a deploy tag collision means the run
	// cannot be trusted to target the right tags, so nothing is published.
	tags := make([]release.DeployTag, len(selected))
	seen := make(map[release.DeployTag]release.Reference, len(selected))
	for i, ref := range selected {
		tag := release.Resolve(ref, o.defaultBranch)
		if prev, dup := seen[tag]; dup {
			return nil, release.WrapErrorf(
				release.ErrDuplicateDeployTag,
				"%s and %s both resolve to %q", prev, ref, tag,
			)
		}
		seen[tag] = ref
		tags[i] = tag
	}

	jobs := make([]Job, len(selected))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.options.Concurrency)
	for i := range selected {
		group.Go(func() error {
			jobs[i] = o.publishJob(groupCtx, selected[i], tags[i])
			// Failures are recorded, never propagated: jobs are isolated
			// units of work and the remaining references must be attempted.
			return nil
		})
	}
	_ = group.Wait()

	result := &Result{Jobs: jobs}
	succeeded, failed := result.Counts()
	logger.Info("sweep finished", "succeeded", succeeded, "failed", failed)

	return result, nil
}

// filter keeps tag references matching the support policy.
func (o *Orchestrator) filter(refs []release.Reference) []release.Reference {
	var selected []release.Reference
	for _, ref := range refs {
		if ref.Kind != release.RefTag {
			continue
		}
		if o.policy.Matches(ref.Name) {
			selected = append(selected, ref)
		}
	}
	return selected
}

// runJob resolves and publishes one reference.
func (o *Orchestrator) runJob(ctx context.Context, ref release.Reference, defaultBranch string) Job {
	tag := release.Resolve(ref, defaultBranch)
	return o.publishJob(ctx, ref, tag)
}

// publishJob invokes the Publisher for one resolved target and records the
// outcome.
func (o *Orchestrator) publishJob(ctx context.Context, ref release.Reference, tag release.DeployTag) Job {
	job := Job{Ref: ref, Tag: tag}
	job.Err = o.publisher.Publish(ctx, publish.Spec{Ref: ref, Tag: tag})

	if job.Failed() {
		o.options.Logger.Error("publish failed", "job", job.String(), "error", job.Err)
	} else {
		o.options.Logger.Info("publish succeeded", "job", job.String())
	}
	return job
}
