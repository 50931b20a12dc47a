// Package secrets provides provider-agnostic resolution of the registry
// credentials the release pipeline injects at run time. The orchestration
// core never sees credential material; it is resolved here and handed
// directly to the publisher and tracker.
package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ErrSecretMissing is returned when a provider has no value for a key.
var ErrSecretMissing = errors.New("secret not found")

// Provider resolves secret values by key.
type Provider interface {
	// Resolve retrieves a single secret by key.
	// Returns ErrSecretMissing if the key has no value.
	Resolve(ctx context.Context, key string) (string, error)

	// Name returns the provider's identifier (e.g., "env", "memory").
	Name() string
}

// Credentials is a username/password pair for registry authentication.
type Credentials struct {
	Username string
	Password string
}

// RegistryCredentials resolves the registry credential pair from a provider
// using the conventional key names. Both keys must resolve; a registry login
// with half a credential is a configuration error.
func RegistryCredentials(ctx context.Context, provider Provider, userKey, passKey string) (Credentials, error) {
	username, err := provider.Resolve(ctx, userKey)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolving registry username from %s: %w", provider.Name(), err)
	}
	password, err := provider.Resolve(ctx, passKey)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolving registry password from %s: %w", provider.Name(), err)
	}
	return Credentials{Username: username, Password: password}, nil
}
