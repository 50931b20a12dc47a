// Command forge-release wiring: configuration, credentials, publisher,
// orchestrator, and the optional release tracker.
package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-release/config"
	ocitrack "github.com/input-output-hk/catalyst-forge-release/oci"
	"github.com/input-output-hk/catalyst-forge-release/publish"
	"github.com/input-output-hk/catalyst-forge-release/release"
	"github.com/input-output-hk/catalyst-forge-release/secrets"
	"github.com/input-output-hk/catalyst-forge-release/sweep"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	orchestrator *sweep.Orchestrator

	// tracker is nil when release tracking is disabled.
	tracker *ocitrack.Tracker
}

// buildApp loads configuration and wires the orchestrator. Configuration
// errors abort here, before anything is built or pushed.
func buildApp(cmd *cobra.Command, extra ...sweep.Option) (*app, error) {
	logger := newLogger(cmd)

	configPath, _ := cmd.Flags().GetString(FlagConfig)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := append([]sweep.Option{
		sweep.WithConcurrency(cfg.Sweep.Concurrency),
		sweep.WithLogger(logger),
	}, extra...)

	supportPolicy, err := supportPolicyFor(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator, err := sweep.New(publisher, supportPolicy, cfg.DefaultBranch, opts...)
	if err != nil {
		return nil, err
	}

	tracker, err := newTracker(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		tracker:      tracker,
	}, nil
}

// supportPolicyFor compiles the configured support pattern. An unset pattern
// yields a nil policy, which the sweep path rejects at run time.
func supportPolicyFor(cfg *config.Config) (*release.SupportPolicy, error) {
	if cfg.SupportPattern == "" {
		return nil, nil
	}
	return cfg.SupportPolicy()
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (publish.Publisher, error) {
	return publish.NewDocker(
		cfg.Image.Repository,
		publish.WithBuildContext(cfg.Image.BuildContext),
		publish.WithDockerfile(cfg.Image.Dockerfile),
		publish.WithBuildArgs(cfg.Image.BuildArgs),
		publish.WithLogger(logger),
	)
}

// newTracker wires the OCI release tracker when tracking is enabled,
// resolving registry credentials from the environment provider.
func newTracker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ocitrack.Tracker, error) {
	if !cfg.Tracking.Enabled {
		return nil, nil
	}

	opts := []ocitrack.Option{}
	if cfg.Registry.Host != "" {
		creds, err := secrets.RegistryCredentials(
			ctx,
			secrets.NewEnvProvider(),
			cfg.Registry.UsernameKey,
			cfg.Registry.PasswordKey,
		)
		switch {
		case err == nil:
			opts = append(opts, ocitrack.WithStaticAuth(cfg.Registry.Host, creds.Username, creds.Password))
		case errors.Is(err, secrets.ErrSecretMissing):
			// Fall back to the ambient Docker credential chain.
			logger.Warn("registry credentials not injected, using docker credential chain", "error", err)
		default:
			return nil, err
		}
	}

	return ocitrack.New(cfg.TrackingRepository(), opts...)
}

// trackJobs pushes release records for terminated jobs. Tracking is
// best-effort reporting: failures are logged and never change an outcome.
func (a *app) trackJobs(ctx context.Context, jobs ...sweep.Job) {
	if a.tracker == nil {
		return
	}
	for _, job := range jobs {
		dgst, err := a.tracker.Track(ctx, a.cfg.Image.Repository, job)
		if err != nil {
			a.logger.Warn("failed to record release", "job", job.String(), "error", err)
			continue
		}
		a.logger.Debug("release recorded", "job", job.String(), "digest", dgst.String())
	}
}
