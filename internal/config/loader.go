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

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file named by CALBRIDGE_CONFIG
//  3. env vars with prefix CALBRIDGE_
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CALBRIDGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// CALBRIDGE_SYNC_PERIOD_DAYS -> sync_period_days, matching the
	// koanf tags on the struct.
	envProvider := env.Provider("CALBRIDGE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "calbridge_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.SyncPeriodDays <= 0 {
		return fmt.Errorf("%w: sync_period_days must be positive", ErrInvalidConfig)
	}
	if cfg.SyncIntervalMinutes <= 0 {
		return fmt.Errorf("%w: sync_interval_minutes must be positive", ErrInvalidConfig)
	}
	if cfg.FetchRetries < 0 {
		return fmt.Errorf("%w: fetch_retries must not be negative", ErrInvalidConfig)
	}
	if cfg.SourceEventPageURL != "" && cfg.EventPageURL() == nil {
		return fmt.Errorf("%w: source_event_page_url is not a valid URL", ErrInvalidConfig)
	}
	return nil
}
