// Package secrets provides the in-memory provider used by tests.
package secrets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryProvider is a thread-safe in-memory Provider for tests and local
// development.
type MemoryProvider struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryProvider creates a MemoryProvider seeded with values.
func NewMemoryProvider(values map[string]string) *MemoryProvider {
	seeded := make(map[string]string, len(values))
	for k, v := range values {
		seeded[k] = v
	}
	return &MemoryProvider{values: seeded}
}

// Resolve implements Provider.
func (p *MemoryProvider) Resolve(_ context.Context, key string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretMissing, key)
	}
	return value, nil
}

// Name implements Provider.
func (p *MemoryProvider) Name() string { return "memory" }

// Store sets a value, overwriting any existing one.
func (p *MemoryProvider) Store(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}
