package integrations

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	httpTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 8 << 20
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int    // HTTP status code
	Body       string // Leading part of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// NewHTTPClient creates an HTTP client with a standard timeout for service requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizeEndpoint trims whitespace and trailing slashes from a base URL
// and checks that it is absolute http(s).
func NormalizeEndpoint(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid endpoint %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", raw)
	}
	return s, nil
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
