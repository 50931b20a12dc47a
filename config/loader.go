// Package config provides configuration loading.
// This file contains the YAML loader and path discovery.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable overriding the config location.
const EnvConfigPath = "FORGE_RELEASE_CONFIG"

// xdgConfigName is the config location searched under the XDG config dirs.
const xdgConfigName = "forge-release/config.yaml"

// Load reads configuration from path, merged over defaults and validated.
// An empty path falls back to DiscoverPath.
func Load(path string) (*Config, error) {
	if path == "" {
		discovered, err := DiscoverPath()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data merged over defaults and validates the result.
// Unknown fields are rejected; a typo in a support pattern key must not
// silently widen a rebuild sweep.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiscoverPath locates the configuration file: the EnvConfigPath variable if
// set, otherwise the XDG config search path.
func DiscoverPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	path, err := xdg.SearchConfigFile(xdgConfigName)
	if err != nil {
		return "", fmt.Errorf("no config found: set %s or create %s: %w", EnvConfigPath, xdgConfigName, err)
	}
	return path, nil
}
