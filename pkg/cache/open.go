package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string

	Dir           string // file
	MemoryEntries int    // memory

	RedisAddr     string // redis
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the configured backend. The Redis backend is pinged so a bad
// address fails at startup rather than on the first request.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryCache(opts.MemoryEntries)
	case BackendFile:
		return NewFileCache(opts.Dir)
	case BackendRedis:
		var ropts []RedisOption
		if opts.RedisPrefix != "" {
			ropts = append(ropts, WithRedisPrefix(opts.RedisPrefix))
		}
		c := NewRedisCache(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, ropts...)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
