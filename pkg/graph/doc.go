// Package graph provides the uniform graph both source tree encodings are
// normalized into, and the positioned layout computed from it.
//
// # Architecture
//
// The package sits between normalization and rendering:
//
//   - pkg/tree: source trees as returned by the interpretation service
//   - pkg/normalize: tree -> [Graph]
//   - pkg/render/nodelink: [Graph] -> DOT -> [Layout]
//
// # Core Types
//
//   - [Graph]: ordered node table plus parent -> child edge list
//   - [Node], [Edge]: vertices and links with stable identifiers
//   - [Layout]: bounding box, node positions and rendered SVG
//
// # Identifiers
//
// Node ids are stringified integers assigned in pre-order starting at "0".
// Edge ids come from a separate counter ("e0", "e1", ...), so two edges never
// share an id even when they join the same pair of nodes.
//
// # Constants
//
// This package is the single source of truth for surface names and node
// kinds:
//
//	graph.SurfaceStanford   // "stanford"
//	graph.SurfaceSensala    // "sensala"
//	graph.KindTree          // "tree"
//	graph.KindTag           // "tag"
//	graph.KindWord          // "word"
//
// # Serialization
//
//	{
//	  "nodes": [{"id": "0", "label": "S", "class": "root", "kind": "tree"}],
//	  "edges": [],
//	  "root": "0"
//	}
//
// # Concurrency
//
// Graph and Layout values are immutable once built and safe to share.
package graph
