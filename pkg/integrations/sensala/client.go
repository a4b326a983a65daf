package sensala

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/integrations"
)

// DefaultEndpoint is where a locally running service listens.
const DefaultEndpoint = "http://localhost:8080"

// Client calls the interpretation service.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	endpoint string
	keyer    cache.Keyer
}

// NewClient creates a client for endpoint with the given cache backend.
// An empty endpoint selects [DefaultEndpoint]; a nil backend disables caching.
func NewClient(backend cache.Cache, endpoint string, cacheTTL time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Client:   integrations.NewClient(backend, "sensala:", cacheTTL, nil),
		endpoint: strings.TrimRight(endpoint, "/"),
		keyer:    cache.NewDefaultKeyer(),
	}
}

// SetKeyer replaces the cache keyer, e.g. with a [cache.ScopedKeyer].
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// Endpoint returns the service base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// EvalURL returns the request URL for discourse.
func (c *Client) EvalURL(discourse string) string {
	return c.endpoint + "/eval?discourse=" + integrations.URLEncode(discourse)
}

// Interpret sends discourse to the service and decodes the three results.
//
// If refresh is true, the cache is bypassed and a fresh call is made.
//
// Returns:
//   - TRANSPORT_FAILURE for network errors and non-2xx statuses
//   - CONTRACT_VIOLATION when the body does not hold three well-formed results
func (c *Client) Interpret(ctx context.Context, discourse string, refresh bool) (*Response, error) {
	var raw json.RawMessage
	key := c.keyer.ResponseKey(c.endpoint, discourse)

	var parsed *Response
	err := c.Cached(ctx, key, refresh, &raw, func() error {
		body, err := c.Post(ctx, c.EvalURL(discourse), "", nil)
		if err != nil {
			return err
		}
		resp, err := Parse(body)
		if err != nil {
			return err
		}
		parsed = resp
		raw = resp.Raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	if parsed != nil {
		return parsed, nil
	}

	// Served from cache. An entry that no longer parses is replaced.
	resp, err := Parse(raw)
	if err != nil {
		if refresh {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "cached response")
		}
		return c.Interpret(ctx, discourse, true)
	}
	return resp, nil
}
