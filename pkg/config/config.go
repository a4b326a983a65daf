// Package config loads viewer configuration.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. built-in defaults ([Default])
//  2. an optional TOML file
//  3. a .env file in the working directory, if present
//  4. SENSALA_* environment variables
//
// Command-line flags are applied on top by the CLI, which binds them to the
// fields of the loaded [Config].
//
// Example sensala.toml:
//
//	endpoint = "http://localhost:8080"
//	timeout = "30s"
//
//	[server]
//	addr = ":3000"
//
//	[surface]
//	width = 600
//	height = 600
//	padding_x = 40
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/integrations"
	"github.com/sensala/viewer/pkg/integrations/sensala"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "SENSALA_"

// Defaults.
const (
	DefaultAddr          = ":3000"
	DefaultTimeout       = 30 * time.Second
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMemoryEntries = 256
)

// Config is the complete viewer configuration.
type Config struct {
	// Endpoint is the interpretation service base URL.
	Endpoint string   `toml:"endpoint"`
	Timeout  Duration `toml:"timeout"`

	Server  ServerConfig  `toml:"server"`
	Surface SurfaceConfig `toml:"surface"`
	Cache   CacheConfig   `toml:"cache"`

	// RankDir is "TB" or "LR".
	RankDir string `toml:"rank_dir"`
}

// ServerConfig configures `sensala serve`.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// SurfaceConfig sizes both rendering surfaces.
type SurfaceConfig struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	PaddingX float64 `toml:"padding_x"`
}

// CacheConfig selects the response and layout cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir"`
	MemoryEntries int      `toml:"memory_entries"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint: sensala.DefaultEndpoint,
		Timeout:  Duration{DefaultTimeout},
		Server: ServerConfig{
			Addr:    DefaultAddr,
			Metrics: true,
		},
		Surface: SurfaceConfig{
			Width:    pipeline.DefaultSurfaceWidth,
			Height:   pipeline.DefaultSurfaceHeight,
			PaddingX: pipeline.DefaultPaddingX,
		},
		Cache: CacheConfig{
			Backend:       cache.BackendMemory,
			TTL:           Duration{DefaultCacheTTL},
			MemoryEntries: DefaultMemoryEntries,
		},
		RankDir: pipeline.DefaultRankDir,
	}
}

// Load builds a configuration from defaults, the TOML file at path (skipped
// when path is empty), .env and the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from SENSALA_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := map[string]*string{
		"ENDPOINT":       &c.Endpoint,
		"ADDR":           &c.Server.Addr,
		"RANK_DIR":       &c.RankDir,
		"CACHE":          &c.Cache.Backend,
		"CACHE_DIR":      &c.Cache.Dir,
		"REDIS_ADDR":     &c.Cache.RedisAddr,
		"REDIS_PASSWORD": &c.Cache.RedisPassword,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"SURFACE_WIDTH":  &c.Surface.Width,
		"SURFACE_HEIGHT": &c.Surface.Height,
		"PADDING_X":      &c.Surface.PaddingX,
	}
	for name, dst := range floats {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return envError(name, v, err)
			}
			*dst = f
		}
	}

	durations := map[string]*Duration{
		"TIMEOUT":   &c.Timeout,
		"CACHE_TTL": &c.Cache.TTL,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return envError(name, v, err)
			}
			dst.Duration = d
		}
	}

	if v, ok := get("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("REDIS_DB", v, err)
		}
		c.Cache.RedisDB = n
	}
	if v, ok := get("METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("METRICS", v, err)
		}
		c.Server.Metrics = b
	}
	return nil
}

func envError(name, value string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, name, value)
}

// Validate checks the configuration and normalizes the endpoint.
func (c *Config) Validate() error {
	endpoint, err := integrations.NormalizeEndpoint(c.Endpoint)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "endpoint")
	}
	c.Endpoint = endpoint

	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "surface must be positive, got %gx%g", c.Surface.Width, c.Surface.Height)
	}
	if c.Surface.PaddingX < 0 || 2*c.Surface.PaddingX >= c.Surface.Width {
		return errors.New(errors.ErrCodeInvalidConfig, "padding_x %g does not fit a surface %g wide", c.Surface.PaddingX, c.Surface.Width)
	}
	if c.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if err := pipeline.ValidateRankDir(c.RankDir); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: memory, file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// SurfaceSize returns the surface dimensions for the pipeline.
func (c Config) SurfaceSize() viewport.Surface {
	return viewport.Surface{Width: c.Surface.Width, Height: c.Surface.Height, PaddingX: c.Surface.PaddingX}
}

// CacheOptions returns the options for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		MemoryEntries: c.Cache.MemoryEntries,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
	}
}

// String summarizes the configuration for logs. Secrets are omitted.
func (c Config) String() string {
	return fmt.Sprintf("endpoint=%s addr=%s surface=%gx%g cache=%s", c.Endpoint, c.Server.Addr, c.Surface.Width, c.Surface.Height, c.Cache.Backend)
}
