// Package secrets provides the environment-variable provider.
// This is the provider CI systems use: credentials are injected into the job
// environment under a fixed prefix.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix is the prefix applied to keys by NewEnvProvider.
const DefaultEnvPrefix = "FORGE_RELEASE_"

// EnvProvider resolves secrets from environment variables. A key is
// upper-cased, non-alphanumeric runes are mapped to underscores, and the
// provider prefix is applied: "registry-password" with the default prefix
// reads FORGE_RELEASE_REGISTRY_PASSWORD.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an EnvProvider with the default prefix.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{prefix: DefaultEnvPrefix}
}

// NewEnvProviderWithPrefix creates an EnvProvider with a custom prefix.
func NewEnvProviderWithPrefix(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Resolve implements Provider.
func (p *EnvProvider) Resolve(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(p.envName(key))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretMissing, p.envName(key))
	}
	return value, nil
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) envName(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
	return p.prefix + mapped
}
