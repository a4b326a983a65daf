// Package sensala provides a client for the discourse interpretation service.
//
// The service exposes one operation, POST {endpoint}/eval?discourse=..., which
// answers with a JSON array of exactly three result envelopes:
//
//	[
//	  {"result": {"label": "S", "nodeType": "root", "children": []}},
//	  {"result": "Socrates"},
//	  {"result": "walk(socrates)"}
//	]
//
// Index 0 is the generic parse tree, index 1 the tagged term tree and
// index 2 the final result text. [Parse] enforces that contract; any
// deviation is a CONTRACT_VIOLATION error. Network failures and non-2xx
// statuses are TRANSPORT_FAILURE errors and are never retried.
//
// Responses are cached by endpoint and discourse. Only responses that pass
// [Parse] are stored.
package sensala
