// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Vector.Dimension != 64 {
		t.Errorf("Vector.Dimension = %d, want 64", cfg.Vector.Dimension)
	}
	if cfg.Recommend.SimilarThreshold != 0.40 {
		t.Errorf("Recommend.SimilarThreshold = %v, want 0.40", cfg.Recommend.SimilarThreshold)
	}
	if cfg.Recommend.Weights.Image != 0.6 || cfg.Recommend.Weights.PriceDecay != 0.5 {
		t.Errorf("Recommend.Weights = %+v, want image 0.6 price 0.5", cfg.Recommend.Weights)
	}
	if cfg.Embedding.Enabled {
		t.Error("Embedding.Enabled should be false by default")
	}
	if cfg.Embedding.URL != "http://localhost:8200" {
		t.Errorf("Embedding.URL = %q, want http://localhost:8200", cfg.Embedding.URL)
	}
	if cfg.Embedding.Timeout != 20*time.Second {
		t.Errorf("Embedding.Timeout = %v, want 20s", cfg.Embedding.Timeout)
	}
	if cfg.Events.Driver != "memory" {
		t.Errorf("Events.Driver = %q, want memory", cfg.Events.Driver)
	}
	if cfg.Profiles.MaxViewed != 50 || cfg.Profiles.MaxWishlist != 200 {
		t.Errorf("Profiles caps = %d/%d, want 50/200", cfg.Profiles.MaxViewed, cfg.Profiles.MaxWishlist)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"PROFILE_STORE_PATH", "profiles.path"},
		{"EMBEDDING_DIM", "vector.dimension"},
		{"RECOMMEND_SIMILAR_THRESHOLD", "recommend.similar_threshold"},
		{"RECOMMEND_WEIGHT_IMAGE", "recommend.weights.image"},
		{"ML_SERVICE_URL", "embedding.url"},
		{"EVENTS_DRIVER", "events.driver"},
		{"NATS_URL", "events.nats_url"},
		{"NATS_EMBEDDED", "events.embedded_server"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := envTransformFunc(tt.input); result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Run("env path wins", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, path)
		if got := findConfigFile(); got != path {
			t.Errorf("findConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("missing env path falls through", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
		orig := DefaultConfigPaths
		DefaultConfigPaths = []string{filepath.Join(tmpDir, "nope.yaml")}
		defer func() { DefaultConfigPaths = orig }()

		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("EMBEDDING_DIM", "128")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("PROFILE_STORE_IN_MEMORY", "true")

	orig := DefaultConfigPaths
	DefaultConfigPaths = nil
	defer func() { DefaultConfigPaths = orig }()

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Vector.Dimension != 128 {
		t.Errorf("Vector.Dimension = %d, want 128", cfg.Vector.Dimension)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("Recommend.CacheTTL = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	if !cfg.Profiles.InMemory {
		t.Error("Profiles.InMemory = false, want true")
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.HybridScan != 1000 {
		t.Errorf("Recommend.HybridScan = %d, want 1000 (default)", cfg.Recommend.HybridScan)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7000
recommend:
  similar_threshold: 0.5
  weights:
    image: 0.7
events:
  driver: nats
  nats_url: nats://broker:4222
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100") // env overrides file

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100 (env over file)", cfg.Server.Port)
	}
	if cfg.Recommend.SimilarThreshold != 0.5 {
		t.Errorf("Recommend.SimilarThreshold = %v, want 0.5", cfg.Recommend.SimilarThreshold)
	}
	if cfg.Recommend.Weights.Image != 0.7 || cfg.Recommend.Weights.Text != 0.3 {
		t.Errorf("Recommend.Weights = %+v, want image 0.7 and default text 0.3", cfg.Recommend.Weights)
	}
	if cfg.Events.Driver != "nats" || cfg.Events.NATSURL != "nats://broker:4222" {
		t.Errorf("Events = %s %s, want nats nats://broker:4222", cfg.Events.Driver, cfg.Events.NATSURL)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "HTTP_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "chatty"},
		{"bad driver", "EVENTS_DRIVER", "kafka"},
		{"bad dimension", "EMBEDDING_DIM", "1"},
		{"bad threshold", "RECOMMEND_SIMILAR_THRESHOLD", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
			t.Setenv(tt.key, tt.value)
			orig := DefaultConfigPaths
			DefaultConfigPaths = nil
			defer func() { DefaultConfigPaths = orig }()

			if _, err := LoadWithKoanf(); err == nil {
				t.Errorf("LoadWithKoanf() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
