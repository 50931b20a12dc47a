// Package oras provides ORAS wrapper functionality.
// This isolates the ORAS dependency in an internal package.
package oras

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// CredentialFunc is an alias for ORAS's credential function type.
// It provides credentials for a given registry (host:port).
type CredentialFunc = auth.CredentialFunc

// HTTPConfig contains configuration for HTTP transport settings.
type HTTPConfig struct {
	// AllowHTTP enables HTTP instead of HTTPS for registry connections.
	AllowHTTP bool

	// AllowInsecure allows connections with self-signed certificates.
	AllowInsecure bool

	// Registries specifies which registries this applies to.
	// If empty, applies to all registries.
	Registries []string
}

// AuthOptions configures authentication and HTTP settings for ORAS operations.
type AuthOptions struct {
	// Static credentials for a specific registry. If set, they override the
	// default Docker credential chain for that registry.
	StaticRegistry string
	StaticUsername string
	StaticPassword string

	// CredentialFunc provides a custom credential callback.
	// If set, this completely overrides the default credential chain.
	CredentialFunc CredentialFunc

	// HTTPConfig controls HTTP vs HTTPS and certificate validation.
	HTTPConfig *HTTPConfig
}

// PushDescriptor describes the content to be pushed to an OCI registry.
type PushDescriptor struct {
	MediaType    string
	ArtifactType string
	Data         []byte
	Annotations  map[string]string
}

// Client provides ORAS push operations (injected for testability).
type Client interface {
	// Push pushes content as an OCI 1.1 artifact and tags it with the
	// reference part of reference. It returns the manifest digest.
	Push(ctx context.Context, reference string, descriptor *PushDescriptor, opts *AuthOptions) (digest.Digest, error)
}

// DefaultClient implements Client using the real ORAS library.
type DefaultClient struct{}

var _ Client = (*DefaultClient)(nil)

// Push pushes an artifact to an OCI registry using ORAS.
func (c *DefaultClient) Push(
	ctx context.Context,
	reference string,
	descriptor *PushDescriptor,
	opts *AuthOptions,
) (digest.Digest, error) {
	if descriptor == nil {
		return "", fmt.Errorf("descriptor cannot be nil")
	}
	if len(descriptor.Data) == 0 {
		return "", mapError("push", reference, fmt.Errorf("no data to push"))
	}

	repo, err := NewRepository(reference, opts)
	if err != nil {
		return "", mapError("push", reference, err)
	}

	_, refPart, _ := splitReference(reference)
	if refPart == "" {
		return "", mapError("push", reference, fmt.Errorf("reference must include a tag"))
	}

	// 1) Push the content blob
	blobDesc, err := oras.PushBytes(ctx, repo, descriptor.MediaType, descriptor.Data)
	if err != nil {
		return "", mapError("push", reference, fmt.Errorf("push blob: %w", err))
	}

	// 2) Pack an OCI 1.1 manifest with the artifact type and empty config
	packOpts := oras.PackManifestOptions{
		Layers:              []ocispec.Descriptor{blobDesc},
		ManifestAnnotations: descriptor.Annotations,
	}
	manDesc, err := oras.PackManifest(ctx, repo, oras.PackManifestVersion1_1, descriptor.ArtifactType, packOpts)
	if err != nil {
		return "", mapError("push", reference, fmt.Errorf("pack manifest v1.1: %w", err))
	}

	// 3) Tag the manifest with the requested ref
	if _, err := oras.Tag(ctx, repo, manDesc.Digest.String(), refPart); err != nil {
		return "", mapError("push", reference, fmt.Errorf("tag manifest: %w", err))
	}

	return manDesc.Digest, nil
}

// NewRepository creates an ORAS repository with authentication configured.
//
// Authentication behavior:
//  1. If CredentialFunc is provided, it takes complete precedence.
//  2. If static credentials are provided, they apply to that registry only.
//  3. Otherwise, the default Docker credential chain (config + helpers) is used.
func NewRepository(reference string, opts *AuthOptions) (*remote.Repository, error) {
	repoPath, _, _ := splitReference(reference)
	if repoPath == "" {
		return nil, fmt.Errorf("invalid reference: %s", reference)
	}

	repo, err := remote.NewRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	credential, err := resolveCredential(opts)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport
	if opts != nil && opts.HTTPConfig != nil && shouldApplyHTTPConfig(reference, opts.HTTPConfig) {
		if opts.HTTPConfig.AllowHTTP {
			repo.PlainHTTP = true
		}
		if opts.HTTPConfig.AllowInsecure {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in
			}
		}
	}

	repo.Client = &auth.Client{
		Client:     &http.Client{Transport: retry.NewTransport(transport)},
		Cache:      auth.NewCache(),
		Credential: credential,
	}

	return repo, nil
}

// resolveCredential selects the credential source per the AuthOptions
// precedence rules.
func resolveCredential(opts *AuthOptions) (CredentialFunc, error) {
	if opts != nil {
		if opts.CredentialFunc != nil {
			return opts.CredentialFunc, nil
		}
		if opts.StaticRegistry != "" && opts.StaticUsername != "" {
			return auth.StaticCredential(opts.StaticRegistry, auth.Credential{
				Username: opts.StaticUsername,
				Password: opts.StaticPassword,
			}), nil
		}
	}

	store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load docker credential store: %w", err)
	}
	return credentials.Credential(store), nil
}

// shouldApplyHTTPConfig determines if HTTP configuration applies to the
// registry named in reference.
func shouldApplyHTTPConfig(reference string, config *HTTPConfig) bool {
	// If no specific registries are configured, apply to all
	if len(config.Registries) == 0 {
		return true
	}

	registry := strings.SplitN(reference, "/", 2)[0]
	for _, configured := range config.Registries {
		if registry == configured {
			return true
		}
		// Hostname-only entries also match any port on that host.
		if !strings.Contains(configured, ":") && strings.HasPrefix(registry, configured+":") {
			return true
		}
	}

	return false
}

// splitReference splits a full OCI reference into repository path and tag.
// Examples:
//
//	localhost:5000/myrepo:latest -> ("localhost:5000/myrepo", "latest", false)
//	ghcr.io/org/name@sha256:abcd -> ("ghcr.io/org/name", "sha256:abcd", true)
func splitReference(full string) (repoPath, refPart string, isDigest bool) {
	if full == "" {
		return "", "", false
	}
	lastSlash := strings.LastIndex(full, "/")
	if lastSlash == -1 {
		return full, "", false
	}
	head := full[:lastSlash]
	tail := full[lastSlash+1:]

	if at := strings.LastIndex(tail, "@"); at != -1 {
		return head + "/" + tail[:at], tail[at+1:], true
	}
	if colon := strings.LastIndex(tail, ":"); colon != -1 {
		// Safe because we looked only in the tail, avoiding the registry port.
		return head + "/" + tail[:colon], tail[colon+1:], false
	}
	return full, "", false
}

// mapError maps ORAS errors to stable error messages.
func mapError(op, ref string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, auth.ErrBasicCredentialNotFound) {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	return fmt.Errorf("%s %s: %w", op, ref, err)
}
