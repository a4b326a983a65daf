// Package tree defines the two source tree encodings returned by the
// interpretation service.
//
// # Generic Trees
//
// A [GenericTree] is a labeled parse tree: every node carries a display
// label, a node type (used as its style class) and an ordered list of
// children. On the wire it is the object form
//
//	{"label": "S", "nodeType": "root", "children": [...]}
//
// # Tagged Terms
//
// A [Term] is a tagged-union term tree. It is either a [Leaf] holding a
// plain word, or a [Tagged] constructor holding an ordered list of named
// [Field] values. On the wire a leaf is a JSON string and a constructor is
// a single-key object mapping the constructor name to its field object:
//
//	{"App": {"fun": "walk", "args": [{"Term": "socrates"}]}}
//
// A field value is either a term, or an array whose elements are single-key
// wrapper objects; each wrapper is unwrapped one level and its sole value is
// the child term.
//
// [DecodeTerm] reads object members in document order using token-level
// decoding, so field order is part of the decoded value rather than an
// accident of map iteration. Every shape mismatch is reported as a
// CONTRACT_VIOLATION error from [github.com/sensala/viewer/pkg/errors].
package tree
