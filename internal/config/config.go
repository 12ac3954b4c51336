// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package config provides layered configuration loading for AudienceGrid
// using Koanf v2. Precedence, highest first: environment variables, optional
// YAML config file, built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Generator GeneratorConfig `koanf:"generator"`
	Viewing   ViewingConfig   `koanf:"viewing"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file, or ":memory:" for ephemeral use.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// PreserveInsertionOrder mirrors the DuckDB setting of the same name.
	// Disabling it reduces memory usage for large bulk loads but may change
	// unordered result order.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`
}

// GeneratorConfig holds CRM synthesis parameters. The defaults reproduce the
// production data-generation profile: 25% overlap with the reference set
// split 8:10:7 across triple/email/phone classes, 15%/20% email/phone
// missingness outside the overlap-protected sets, and a 10% mutated
// duplicate tranche.
type GeneratorConfig struct {
	TargetRows      int     `koanf:"target_rows"`
	OverlapFraction float64 `koanf:"overlap_fraction"`

	// Relative weights of the overlap classes among earmarked rows.
	TripleWeight int `koanf:"triple_weight"`
	EmailWeight  int `koanf:"email_weight"`
	PhoneWeight  int `koanf:"phone_weight"`
	NameWeight   int `koanf:"name_weight"`

	EmailMissingRate  float64 `koanf:"email_missing_rate"`
	PhoneMissingRate  float64 `koanf:"phone_missing_rate"`
	DuplicateFraction float64 `koanf:"duplicate_fraction"`

	// JoinDateRangeDays bounds the uniform join-date distribution, counting
	// back from the generation time.
	JoinDateRangeDays int `koanf:"join_date_range_days"`

	// Seed fixes the PRNG for reproducible populations; 0 seeds from the
	// current time.
	Seed int64 `koanf:"seed"`
}

// ViewingConfig holds viewing-log synthesis parameters.
type ViewingConfig struct {
	// SampleMultiplier scales events per half-hour slot (baseline ~100).
	SampleMultiplier int `koanf:"sample_multiplier"`

	// AttachCustomerPct is the fraction of events carrying a customer id,
	// clamped to [0,1].
	AttachCustomerPct float64 `koanf:"attach_customer_pct"`

	// BatchSize is the insert batch size for bulk event loading.
	BatchSize int `koanf:"batch_size"`

	Seed int64 `koanf:"seed"`
}

// AnalyticsConfig holds aggregation and reporting settings.
type AnalyticsConfig struct {
	// RefreshInterval is how often the supervised refresh service recomputes
	// all derived outputs. Zero disables periodic refresh.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RefreshOnStartup runs a full refresh once at boot.
	RefreshOnStartup bool `koanf:"refresh_on_startup"`

	// CacheTTL bounds staleness of cached reporting responses.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Workers is the aggregator partition count; 0 means runtime.NumCPU().
	Workers int `koanf:"workers"`

	TopCustomersLimit   int `koanf:"top_customers_limit"`
	TopProgrammesLimit  int `koanf:"top_programmes_limit"`
	ReportingWindowDays int `koanf:"reporting_window_days"`
}

// APIConfig holds HTTP API behaviour settings.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8490,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/audiencegrid.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Generator: GeneratorConfig{
			TargetRows:        100_000,
			OverlapFraction:   0.25,
			TripleWeight:      8,
			EmailWeight:       10,
			PhoneWeight:       7,
			NameWeight:        0,
			EmailMissingRate:  0.15,
			PhoneMissingRate:  0.20,
			DuplicateFraction: 0.10,
			JoinDateRangeDays: 3650,
			Seed:              0,
		},
		Viewing: ViewingConfig{
			SampleMultiplier:  1,
			AttachCustomerPct: 0.30,
			BatchSize:         5000,
			Seed:              0,
		},
		Analytics: AnalyticsConfig{
			RefreshInterval:     0,
			RefreshOnStartup:    false,
			CacheTTL:            5 * time.Minute,
			Workers:             0,
			TopCustomersLimit:   100,
			TopProgrammesLimit:  50,
			ReportingWindowDays: 7,
		},
		API: APIConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Generator.TargetRows <= 0 {
		return fmt.Errorf("generator.target_rows must be positive, got %d", c.Generator.TargetRows)
	}
	if c.Generator.OverlapFraction < 0 || c.Generator.OverlapFraction > 1 {
		return fmt.Errorf("generator.overlap_fraction must be in [0,1], got %g", c.Generator.OverlapFraction)
	}
	if c.Generator.TripleWeight < 0 || c.Generator.EmailWeight < 0 ||
		c.Generator.PhoneWeight < 0 || c.Generator.NameWeight < 0 {
		return fmt.Errorf("generator overlap class weights must be non-negative")
	}
	if c.Generator.OverlapFraction > 0 &&
		c.Generator.TripleWeight+c.Generator.EmailWeight+c.Generator.PhoneWeight+c.Generator.NameWeight == 0 {
		return fmt.Errorf("generator overlap class weights must not all be zero when overlap_fraction > 0")
	}
	for name, rate := range map[string]float64{
		"generator.email_missing_rate": c.Generator.EmailMissingRate,
		"generator.phone_missing_rate": c.Generator.PhoneMissingRate,
		"generator.duplicate_fraction": c.Generator.DuplicateFraction,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, rate)
		}
	}
	if c.Generator.JoinDateRangeDays <= 0 {
		return fmt.Errorf("generator.join_date_range_days must be positive, got %d", c.Generator.JoinDateRangeDays)
	}
	if c.Viewing.SampleMultiplier <= 0 {
		return fmt.Errorf("viewing.sample_multiplier must be positive, got %d", c.Viewing.SampleMultiplier)
	}
	if c.Viewing.BatchSize <= 0 {
		return fmt.Errorf("viewing.batch_size must be positive, got %d", c.Viewing.BatchSize)
	}
	if c.Analytics.CacheTTL < 0 {
		return fmt.Errorf("analytics.cache_ttl must not be negative")
	}
	if c.Analytics.TopCustomersLimit <= 0 || c.Analytics.TopProgrammesLimit <= 0 {
		return fmt.Errorf("analytics reporting limits must be positive")
	}
	if c.Analytics.ReportingWindowDays <= 0 {
		return fmt.Errorf("analytics.reporting_window_days must be positive, got %d", c.Analytics.ReportingWindowDays)
	}
	return nil
}
