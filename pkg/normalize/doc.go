// Package normalize converts source trees into the uniform [graph.Graph].
//
// Both normalizers perform a pre-order depth-first walk. The current node is
// allocated the next id from the walk's counter before its children are
// visited; each child is then normalized in full and only afterwards linked
// to its parent. Ids are therefore dense, start at "0", and the root is
// always "0".
//
//	g, err := normalize.TaggedTermNormalizer{}.Normalize(term)
//	if err != nil {
//	    // CONTRACT_VIOLATION: the term has a hole
//	}
//
// Counters live in a per-call arena, so normalizers are stateless values
// that are safe for concurrent use.
package normalize
