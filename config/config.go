// Package config loads and validates the settings of the SQL layer.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. config.yaml, then config.<app.env>.yaml
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadOptionalFile(k, "config.yaml"); err != nil {
		return nil, err
	}

	if env := k.String("app.env"); env != "" {
		if err := loadOptionalFile(k, fmt.Sprintf("config.%s.yaml", env)); err != nil {
			return nil, err
		}
	}

	return finish(k)
}

// LoadBytes loads configuration from YAML content instead of files.
// Defaults and environment variables apply as in Load.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := loadEnvironment(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	err := k.Load(file.Provider(path), yaml.Parser())
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// loadEnvironment maps DATABASE_QUERY_SLOW_THRESHOLD to database.query.slow.threshold.
func loadEnvironment(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "bow",
		"app.env":  EnvDevelopment,

		// Database defaults not provided, so a connection is only opened
		// when explicitly configured.

		"log.level":  "info",
		"log.pretty": false,

		"migration.table":   "migrations",
		"migration.autorun": false,
		"migration.timeout": "5m",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
