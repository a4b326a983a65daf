// Package integrations provides HTTP clients for remote services.
//
// # Overview
//
// Each remote service has its own subpackage:
//
//   - [sensala]: the discourse interpretation service
//
// # Client Pattern
//
// Service clients follow a consistent pattern:
//
//	client := sensala.NewClient(c, endpoint, cache.TTLResponse)
//	resp, err := client.Interpret(ctx, "Socrates walks.", false) // false = use cache
//
// Clients handle:
//   - HTTP requests with status mapping (no automatic retry)
//   - Response caching through any [cache.Cache] backend
//   - Service-specific parsing and contract checks
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by all service
// clients. Failures carry the TRANSPORT_FAILURE code from the errors package;
// a non-2xx response additionally wraps a [StatusError].
//
// [sensala]: github.com/sensala/viewer/pkg/integrations/sensala
// [cache.Cache]: github.com/sensala/viewer/pkg/cache.Cache
package integrations
