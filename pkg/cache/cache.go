package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default TTLs for cached artifacts.
const (
	// TTLResponse bounds how long an interpretation response is reused.
	TTLResponse = 24 * time.Hour

	// TTLLayout bounds how long a computed layout is reused. Layouts are a
	// pure function of the graph and options, so they live longer.
	TTLLayout = 7 * 24 * time.Hour
)

// Keyer derives cache keys. Implementations must produce keys that differ
// whenever any input that affects the cached value differs.
type Keyer interface {
	// ResponseKey identifies a remote interpretation response.
	ResponseKey(endpoint, discourse string) string

	// LayoutKey identifies the layout of a graph (by content hash) under
	// the given options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the options that affect a computed layout.
type LayoutKeyOpts struct {
	RankDir  string `json:"rank_dir"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer derives keys by hashing their inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResponseKey implements [Keyer].
func (DefaultKeyer) ResponseKey(endpoint, discourse string) string {
	return hashKey("response", endpoint, discourse)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// GetJSON reads key and decodes it into v. It returns [ErrCacheMiss] on a
// miss, and also when the entry cannot be decoded (the entry is dropped).
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
