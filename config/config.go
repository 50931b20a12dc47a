// Package config provides the pipeline configuration surface for the release
// orchestrator: the default branch, the rebuild support pattern, and the
// image publishing targets.
package config

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-release/release"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// DefaultBranch is the branch whose builds map to the "latest" tag.
	DefaultBranch string `yaml:"defaultBranch"`

	// SupportPattern selects which historical tags are eligible for
	// scheduled rebuild sweeps.
	SupportPattern string `yaml:"supportPattern"`

	// Image describes the image being released.
	Image ImageConfig `yaml:"image"`

	// Sweep tunes the scheduled rebuild path.
	Sweep SweepConfig `yaml:"sweep"`

	// Registry names the secret keys carrying registry credentials.
	Registry RegistryConfig `yaml:"registry"`

	// Tracking configures optional OCI release records.
	Tracking TrackingConfig `yaml:"tracking"`
}

// ImageConfig describes the image build and its registry destination.
type ImageConfig struct {
	// Repository is the full image repository (e.g. "ghcr.io/org/server").
	Repository string `yaml:"repository"`

	// BuildContext is the docker build context directory.
	BuildContext string `yaml:"buildContext"`

	// Dockerfile is an explicit Dockerfile path. Empty uses the CLI default.
	Dockerfile string `yaml:"dockerfile"`

	// BuildArgs are forwarded to the build step.
	BuildArgs map[string]string `yaml:"buildArgs"`
}

// SweepConfig tunes the scheduled rebuild path.
type SweepConfig struct {
	// Concurrency bounds parallel jobs within a sweep.
	Concurrency int `yaml:"concurrency"`
}

// RegistryConfig names where credentials come from.
// The values are secret keys, never credential material.
type RegistryConfig struct {
	// Host is the registry hostname for static authentication
	// (e.g. "ghcr.io"). Empty uses the ambient Docker credential chain.
	Host string `yaml:"host"`

	// UsernameKey and PasswordKey are the secret provider keys holding the
	// registry credential pair.
	UsernameKey string `yaml:"usernameKey"`
	PasswordKey string `yaml:"passwordKey"`
}

// TrackingConfig configures OCI release records.
type TrackingConfig struct {
	// Enabled turns release record pushes on.
	Enabled bool `yaml:"enabled"`

	// Repository is the record repository. Defaults to
	// "<image.repository>/release-records".
	Repository string `yaml:"repository"`
}

// Default returns a Config populated with defaults. Loading merges file
// values over this.
func Default() *Config {
	return &Config{
		DefaultBranch: "master",
		Image: ImageConfig{
			BuildContext: ".",
		},
		Sweep: SweepConfig{
			Concurrency: 2,
		},
		Registry: RegistryConfig{
			UsernameKey: "registry-username",
			PasswordKey: "registry-password",
		},
	}
}

// Validate checks the configuration for correctness, compiling the support
// pattern. Validation failures are configuration errors: the run must abort
// before any publish is attempted.
func (c *Config) Validate() error {
	if c.DefaultBranch == "" {
		return fmt.Errorf("defaultBranch cannot be empty")
	}
	if c.Image.Repository == "" {
		return fmt.Errorf("image.repository is required")
	}
	if c.SupportPattern != "" {
		if _, err := release.NewSupportPolicy(c.SupportPattern); err != nil {
			return fmt.Errorf("supportPattern: %w", err)
		}
	}
	if c.Sweep.Concurrency < 0 {
		return fmt.Errorf("sweep.concurrency cannot be negative")
	}
	if c.Tracking.Enabled && c.TrackingRepository() == "" {
		return fmt.Errorf("tracking.repository is required when tracking is enabled")
	}
	return nil
}

// SupportPolicy compiles the configured support pattern.
// Call Validate first; an unset pattern is a configuration error for sweeps.
func (c *Config) SupportPolicy() (*release.SupportPolicy, error) {
	return release.NewSupportPolicy(c.SupportPattern)
}

// TrackingRepository returns the configured record repository, defaulting to
// a "release-records" repository alongside the image.
func (c *Config) TrackingRepository() string {
	if c.Tracking.Repository != "" {
		return c.Tracking.Repository
	}
	if c.Image.Repository != "" {
		return c.Image.Repository + "/release-records"
	}
	return ""
}
