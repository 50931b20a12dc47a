// Package ocitrack provides functional options for the release tracker.
package ocitrack

import (
	"context"

	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/input-output-hk/catalyst-forge-release/oci/internal/oras"
)

// Options contains configuration options for the Tracker.
type Options struct {
	// Auth options for ORAS operations.
	Auth *oras.AuthOptions

	// Client allows injecting a custom ORAS client for testing.
	// If nil, the default ORAS client will be used.
	Client oras.Client
}

// Option is a functional option for configuring the Tracker.
type Option func(*Options)

// DefaultOptions returns the default tracker options: the Docker credential
// chain over HTTPS.
func DefaultOptions() *Options {
	return &Options{}
}

// WithClient injects a custom ORAS client. Primarily used for testing.
func WithClient(client oras.Client) Option {
	return func(o *Options) { o.Client = client }
}

// WithStaticAuth configures static credentials for a specific registry.
// Other registries keep using the default Docker credential chain.
func WithStaticAuth(registry, username, password string) Option {
	return func(o *Options) {
		if o.Auth == nil {
			o.Auth = &oras.AuthOptions{}
		}
		o.Auth.StaticRegistry = registry
		o.Auth.StaticUsername = username
		o.Auth.StaticPassword = password
	}
}

// WithCredentialFunc configures a custom credential callback, overriding the
// default credential chain for all registries.
func WithCredentialFunc(fn func(ctx context.Context, registry string) (auth.Credential, error)) Option {
	return func(o *Options) {
		if o.Auth == nil {
			o.Auth = &oras.AuthOptions{}
		}
		o.Auth.CredentialFunc = fn
	}
}

// WithHTTP configures HTTP transport settings for registry connections:
// plain HTTP, self-signed certificates, and which registries that applies to
// (empty applies to all). Intended for local test registries.
func WithHTTP(allowHTTP, allowInsecure bool, registries []string) Option {
	return func(o *Options) {
		if o.Auth == nil {
			o.Auth = &oras.AuthOptions{}
		}
		o.Auth.HTTPConfig = &oras.HTTPConfig{
			AllowHTTP:     allowHTTP,
			AllowInsecure: allowInsecure,
			Registries:    registries,
		}
	}
}
