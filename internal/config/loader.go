package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GUARDIAN_CONFIG is set
//  3. env (prefix GUARDIAN_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GUARDIAN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GUARDIAN_ADDR, GUARDIAN_QUEUE_SIZE, ...
	// Underscores are preserved to match the koanf struct tags.
	envProvider := env.Provider("GUARDIAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "guardian_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.RestartCount < 1:
		return fmt.Errorf("%w: restart_count must be positive", ErrInvalidConfig)
	case c.DecayRatePerDay < 0:
		return fmt.Errorf("%w: decay_rate_per_day must not be negative", ErrInvalidConfig)
	case c.SaturationK <= 0:
		return fmt.Errorf("%w: saturation_k must be positive", ErrInvalidConfig)
	case c.RedundancyTarget < 1:
		return fmt.Errorf("%w: redundancy_target must be positive", ErrInvalidConfig)
	case c.SevereConflictRatio <= 0 || c.SevereConflictRatio > 1:
		return fmt.Errorf("%w: severe_conflict_ratio must be in (0,1]", ErrInvalidConfig)
	case c.LinchpinLevel <= 0 || c.LinchpinLevel > 1:
		return fmt.Errorf("%w: linchpin_level must be in (0,1]", ErrInvalidConfig)
	}
	return nil
}
