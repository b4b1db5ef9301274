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

	"github.com/JericNisperos/pvparena/internal/domain/elo"
	"github.com/JericNisperos/pvparena/pkg/logger"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PVPA_CONFIG is set
//  3. env (prefix PVPA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PVPA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PVPA_ADDR, PVPA_K_FACTOR, ...
	// Map env keys like PVPA_K_FACTOR -> k_factor (flat keys,
	// underscores preserved to match the koanf tags on the struct).
	envProvider := env.Provider("PVPA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pvpa_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}

	cfg.sanitize(ctx)
	return &cfg, nil
}

// sanitize replaces out-of-range rating parameters with their defaults.
// Bad values are recoverable here, so they warn instead of failing the
// load.
func (c *Config) sanitize(ctx context.Context) {
	if c.KFactor < elo.MinKFactor || c.KFactor > elo.MaxKFactor {
		logger.Get().Warn(ctx, "k_factor out of range, using default",
			logger.Float64("k_factor", c.KFactor),
			logger.Float64("default", elo.DefaultKFactor),
		)
		c.KFactor = elo.DefaultKFactor
	}
	if c.InitialRating < elo.MinRating || c.InitialRating > elo.MaxRating {
		logger.Get().Warn(ctx, "initial_rating out of range, using default",
			logger.Float64("initial_rating", c.InitialRating),
			logger.Float64("default", elo.DefaultInitialRating),
		)
		c.InitialRating = elo.DefaultInitialRating
	}
}
