// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Server.Port != 8490 {
		t.Errorf("default port = %d, want 8490", cfg.Server.Port)
	}
	if cfg.Generator.OverlapFraction != 0.25 {
		t.Errorf("default overlap fraction = %g, want 0.25", cfg.Generator.OverlapFraction)
	}
	if cfg.Generator.TripleWeight != 8 || cfg.Generator.EmailWeight != 10 || cfg.Generator.PhoneWeight != 7 {
		t.Errorf("default overlap weights = %d:%d:%d, want 8:10:7",
			cfg.Generator.TripleWeight, cfg.Generator.EmailWeight, cfg.Generator.PhoneWeight)
	}
	if cfg.Analytics.CacheTTL != 5*time.Minute {
		t.Errorf("default cache TTL = %v, want 5m", cfg.Analytics.CacheTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("CRM_TARGET_ROWS", "500")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("database path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.Generator.TargetRows != 500 {
		t.Errorf("target rows = %d, want 500", cfg.Generator.TargetRows)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7001\ngenerator:\n  overlap_fraction: 0.5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("port = %d, want 7001 from file", cfg.Server.Port)
	}
	if cfg.Generator.OverlapFraction != 0.5 {
		t.Errorf("overlap fraction = %g, want 0.5 from file", cfg.Generator.OverlapFraction)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7001\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 7002 {
		t.Errorf("port = %d, want env override 7002", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"negative target rows", func(c *Config) { c.Generator.TargetRows = -1 }},
		{"overlap fraction above one", func(c *Config) { c.Generator.OverlapFraction = 1.5 }},
		{"negative class weight", func(c *Config) { c.Generator.EmailWeight = -1 }},
		{"all-zero weights with overlap", func(c *Config) {
			c.Generator.TripleWeight = 0
			c.Generator.EmailWeight = 0
			c.Generator.PhoneWeight = 0
			c.Generator.NameWeight = 0
		}},
		{"duplicate fraction above one", func(c *Config) { c.Generator.DuplicateFraction = 1.1 }},
		{"zero sample multiplier", func(c *Config) { c.Viewing.SampleMultiplier = 0 }},
		{"zero reporting window", func(c *Config) { c.Analytics.ReportingWindowDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() accepted invalid config (%s)", tt.name)
			}
		})
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Fatalf("cors origins = %v, want 2 entries", cfg.API.CORSOrigins)
	}
	if cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins[1] = %q, want trimmed value", cfg.API.CORSOrigins[1])
	}
}
