// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys so env vars map one to one (VAGAS_MAX_LIMIT -> max_limit).
// - New returns defaults; Load layers file and env on top; Validate guards the result.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // quota days follow a named zone even on hosts without zoneinfo
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the repository backend: memory or postgres.
	Store string `koanf:"store"`

	// DatabaseURL is the Postgres DSN used when Store is postgres.
	DatabaseURL string `koanf:"database_url"`

	// RedisURL enables the Redis quota counter and alert publisher when set.
	RedisURL string `koanf:"redis_url"`

	// Scoring weights. All zero is allowed and yields a total of zero.
	WeightCountry        float64 `koanf:"weight_country"`
	WeightArea           float64 `koanf:"weight_area"`
	WeightSalary         float64 `koanf:"weight_salary"`
	WeightLevel          float64 `koanf:"weight_level"`
	WeightEmploymentType float64 `koanf:"weight_employment_type"`
	WeightRemote         float64 `koanf:"weight_remote"`

	// OversampleFactor multiplies the requested limit when fetching postings.
	OversampleFactor int `koanf:"oversample_factor"`

	// DefaultLimit and MaxLimit bound GET /users/{id}/matches?limit.
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// FreePlanDailyLimit applies to users without an active subscription.
	FreePlanDailyLimit int `koanf:"free_plan_daily_limit"`

	// SweepSchedule is a cron spec for the periodic matching sweep. Empty disables it.
	SweepSchedule string `koanf:"sweep_schedule"`

	// SweepRatePerSec throttles how fast users are enqueued by the sweep.
	SweepRatePerSec float64 `koanf:"sweep_rate_per_sec"`

	// WorkerCount sets the number of sweep workers.
	WorkerCount int `koanf:"worker_count"`

	// EventQueueSize bounds the in-memory sweep queue.
	EventQueueSize int `koanf:"queue_size"`

	// AlertDedupeSize sets the size of the in-process alert dedupe cache.
	AlertDedupeSize int `koanf:"alert_dedupe_size"`

	// AlertChannel is the Redis channel priority alerts are published on.
	AlertChannel string `koanf:"alert_channel"`

	// Timezone defines the day boundary for daily quotas.
	Timezone string `koanf:"timezone"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		Store:                StoreMemory,
		WeightCountry:        40,
		WeightArea:           30,
		WeightSalary:         15,
		WeightLevel:          8,
		WeightEmploymentType: 4,
		WeightRemote:         3,
		OversampleFactor:     5,
		DefaultLimit:         10,
		MaxLimit:             50,
		FreePlanDailyLimit:   5,
		SweepSchedule:        "@every 1h",
		SweepRatePerSec:      20,
		WorkerCount:          runtime.NumCPU() * 2,
		EventQueueSize:       10_000,
		AlertDedupeSize:      100_000,
		AlertChannel:         "EVENT_PRIORITY_ALERT",
		Timezone:             "America/Sao_Paulo",
	}
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	for name, w := range map[string]float64{
		"weight_country":         c.WeightCountry,
		"weight_area":            c.WeightArea,
		"weight_salary":          c.WeightSalary,
		"weight_level":           c.WeightLevel,
		"weight_employment_type": c.WeightEmploymentType,
		"weight_remote":          c.WeightRemote,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidConfig, name)
		}
	}
	if c.OversampleFactor < 1 {
		return fmt.Errorf("%w: oversample_factor must be at least 1", ErrInvalidConfig)
	}
	if c.DefaultLimit < 1 || c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("%w: need 1 <= default_limit <= max_limit", ErrInvalidConfig)
	}
	if c.FreePlanDailyLimit < 0 {
		return fmt.Errorf("%w: free_plan_daily_limit must not be negative", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 || c.EventQueueSize < 1 {
		return fmt.Errorf("%w: worker_count and queue_size must be positive", ErrInvalidConfig)
	}
	if c.SweepRatePerSec <= 0 {
		return fmt.Errorf("%w: sweep_rate_per_sec must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
