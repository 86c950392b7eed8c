package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by ARBITER_CONFIG, when set
//  3. environment variables with the ARBITER_ prefix
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ARBITER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// ARBITER_LOG_LEVEL -> log_level; nested keys use double underscores,
	// ARBITER_ENGINE__DEPTH -> engine.depth.
	envProvider := env.Provider("ARBITER_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "ARBITER_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("%w: engine path must not be empty", ErrInvalidEngine)
	}
	if c.Engine.Depth <= 0 {
		return fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidEngine, c.Engine.Depth)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.ActiveControl(); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownTimeControl, c.ActiveTimeControl)
	}
	return nil
}
