package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sensala/viewer/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Endpoint != "http://localhost:8080" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if s := cfg.SurfaceSize(); s.Width != 600 || s.Height != 600 || s.PaddingX != 40 {
		t.Errorf("SurfaceSize() = %+v", s)
	}
	if cfg.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensala.toml")
	data := `
endpoint = "https://sensala.example.org/"
timeout = "5s"
rank_dir = "LR"

[server]
addr = ":9000"

[surface]
width = 800
height = 400

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Endpoint != "https://sensala.example.org" {
		t.Errorf("Endpoint = %q, want trailing slash trimmed", cfg.Endpoint)
	}
	if cfg.Timeout.Duration != 5*time.Second || cfg.RankDir != "LR" || cfg.Server.Addr != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Surface.Width != 800 || cfg.Surface.Height != 400 || cfg.Surface.PaddingX != 40 {
		t.Errorf("Surface = %+v, want padding default kept", cfg.Surface)
	}
	opts := cfg.CacheOptions()
	if opts.Backend != "redis" || opts.RedisAddr != "localhost:6379" || opts.RedisDB != 2 {
		t.Errorf("CacheOptions() = %+v", opts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SENSALA_ENDPOINT", "http://interp:9090")
	t.Setenv("SENSALA_ADDR", ":4000")
	t.Setenv("SENSALA_SURFACE_WIDTH", "1024")
	t.Setenv("SENSALA_TIMEOUT", "1m")
	t.Setenv("SENSALA_METRICS", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Endpoint != "http://interp:9090" || cfg.Server.Addr != ":4000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Surface.Width != 1024 || cfg.Timeout.Duration != time.Minute || cfg.Server.Metrics {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"SURFACE_HEIGHT", "tall"},
		{"TIMEOUT", "soon"},
		{"REDIS_DB", "one"},
		{"METRICS", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			lookup := func(k string) (string, bool) {
				if k == EnvPrefix+tt.name {
					return tt.value, true
				}
				return "", false
			}
			if err := cfg.applyEnv(lookup); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("applyEnv() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad endpoint", func(c *Config) { c.Endpoint = "localhost:8080" }},
		{"zero width", func(c *Config) { c.Surface.Width = 0 }},
		{"negative height", func(c *Config) { c.Surface.Height = -1 }},
		{"padding too wide", func(c *Config) { c.Surface.PaddingX = 300 }},
		{"zero timeout", func(c *Config) { c.Timeout = Duration{} }},
		{"bad rank dir", func(c *Config) { c.RankDir = "BT" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
