// Package config defines process configuration and loading.
//
// Conventions follow the rest of the codebase: New builds defaults,
// Load layers an optional YAML file and environment variables on top,
// and validation happens once at load time.
package config

import (
	"net/url"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the listen address of the status/metrics HTTP surface.
	Addr string `koanf:"addr"`

	// SourceBaseURL is the groupware calendar API endpoint.
	SourceBaseURL string `koanf:"source_base_url"`

	// SourceEventPageURL is the base URL of the source's event page,
	// used to build deep-links on target events. Syncing refuses to
	// start while it is unset.
	SourceEventPageURL string `koanf:"source_event_page_url"`

	// TargetBaseURL is the target calendar API endpoint.
	TargetBaseURL string `koanf:"target_base_url"`

	// TargetCalendarID names the calendar receiving synchronized events.
	TargetCalendarID string `koanf:"target_calendar_id"`

	// SyncPeriodDays is the width of the sync window starting at now.
	SyncPeriodDays int `koanf:"sync_period_days"`

	// SyncIntervalMinutes is the pause between scheduled sync cycles.
	SyncIntervalMinutes int `koanf:"sync_interval_minutes"`

	// FetchRetries is how many extra attempts the bulk source fetch
	// gets on transient failure.
	FetchRetries int `koanf:"fetch_retries"`

	// CachePath is the schedule cache database file.
	CachePath string `koanf:"cache_path"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9280",
		SyncPeriodDays:      30,
		SyncIntervalMinutes: 30,
		FetchRetries:        0,
		CachePath:           "calbridge.db",
	}
}

// EventPageURL parses the configured deep-link base, returning nil when
// it is unset or unparseable. The synchronizer treats nil as a
// configuration error.
func (c *Config) EventPageURL() *url.URL {
	if c.SourceEventPageURL == "" {
		return nil
	}
	u, err := url.Parse(c.SourceEventPageURL)
	if err != nil {
		return nil
	}
	return u
}

// SyncPeriod returns the sync window width as a duration.
func (c *Config) SyncPeriod() time.Duration {
	return time.Duration(c.SyncPeriodDays) * 24 * time.Hour
}

// SyncInterval returns the pause between scheduled cycles.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}
