package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/observability"
)

// Client provides shared HTTP functionality for service clients.
// It handles response caching, common request headers and status mapping.
// Requests are never retried: a failed call surfaces as TRANSPORT_FAILURE.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyPrefix string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Cache keys are prefixed with keyPrefix and stored for ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and a nil cache
// to disable caching.
func NewClient(c cache.Cache, keyPrefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	full := c.keyPrefix + key
	kind := keyType(key)
	if !refresh {
		if err := cache.GetJSON(ctx, c.cache, full, v); err == nil {
			observability.Cache().OnCacheHit(ctx, kind)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, full, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
	}
	return nil
}

// Post sends body to url and returns the response body.
// Non-2xx statuses and network failures are TRANSPORT_FAILURE errors.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTransport, err, "POST %s timed out", path)
		}
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "POST %s", path)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "read response from %s", path)
	}
	if err := checkStatus(resp.StatusCode, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "POST %s", path)
	}
	return data, nil
}

func checkStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &StatusError{StatusCode: code, Body: snippet(body)}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
