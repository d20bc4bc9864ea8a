// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and HACKMATCH_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, tees logs into a rotating file.
	LogFile string `koanf:"log_file"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkerCount sets the number of delivery workers.
	NotifyWorkerCount int `koanf:"notify_worker_count"`

	// DedupeSize bounds the reminder idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SuggestionLimit caps teammate suggestions.
	SuggestionLimit int `koanf:"suggestion_limit"`

	// InboxLimit caps GET /notifications.
	InboxLimit int `koanf:"inbox_limit"`

	// ReminderWindowHours is how far ahead registration deadlines trigger reminders.
	ReminderWindowHours int `koanf:"reminder_window_hours"`

	// DefaultMaxTeamSize and DefaultMinTeamSize apply when a hackathon leaves them unset.
	DefaultMaxTeamSize int `koanf:"default_max_team_size"`
	DefaultMinTeamSize int `koanf:"default_min_team_size"`

	// RedisAddr selects the Redis inbox; empty keeps notifications in memory.
	RedisAddr string `koanf:"redis_addr"`

	// NatsURL enables the NATS notification relay and team chat publisher.
	NatsURL string `koanf:"nats_url"`

	// CORSAllowedOrigins is a comma separated origin list; empty disables CORS headers.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		NotifyQueueSize:     10_000,
		NotifyWorkerCount:   runtime.NumCPU(),
		DedupeSize:          100_000,
		SuggestionLimit:     10,
		InboxLimit:          50,
		ReminderWindowHours: 24,
		DefaultMaxTeamSize:  4,
		DefaultMinTeamSize:  1,
	}
}

// ReminderWindow returns ReminderWindowHours as a duration.
func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderWindowHours) * time.Hour
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks the fields that would otherwise fail at runtime.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.NotifyQueueSize <= 0:
		return fmt.Errorf("%w: notify_queue_size must be positive, got %d", ErrInvalidConfig, c.NotifyQueueSize)
	case c.NotifyWorkerCount <= 0:
		return fmt.Errorf("%w: notify_worker_count must be positive, got %d", ErrInvalidConfig, c.NotifyWorkerCount)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.SuggestionLimit <= 0:
		return fmt.Errorf("%w: suggestion_limit must be positive, got %d", ErrInvalidConfig, c.SuggestionLimit)
	case c.InboxLimit <= 0:
		return fmt.Errorf("%w: inbox_limit must be positive, got %d", ErrInvalidConfig, c.InboxLimit)
	case c.ReminderWindowHours <= 0:
		return fmt.Errorf("%w: reminder_window_hours must be positive, got %d", ErrInvalidConfig, c.ReminderWindowHours)
	case c.DefaultMinTeamSize < 1:
		return fmt.Errorf("%w: default_min_team_size must be at least 1, got %d", ErrInvalidConfig, c.DefaultMinTeamSize)
	case c.DefaultMaxTeamSize < c.DefaultMinTeamSize:
		return fmt.Errorf("%w: default_max_team_size %d is below default_min_team_size %d",
			ErrInvalidConfig, c.DefaultMaxTeamSize, c.DefaultMinTeamSize)
	}
	return nil
}
