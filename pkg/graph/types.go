package graph

import (
	"strconv"

	"github.com/sensala/viewer/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Surface names. Each names one independent rendering surface and the tree
// that feeds it.
const (
	SurfaceStanford = "stanford" // parse tree
	SurfaceSensala  = "sensala"  // term tree
)

// Node kinds.
const (
	KindTree = "tree" // parse tree node
	KindTag  = "tag"  // term constructor
	KindWord = "word" // term leaf
)

// =============================================================================
// Graph - Uniform Node/Edge Representation
// =============================================================================

// Graph is the uniform graph both tree encodings normalize to.
//
// Nodes are ordered by id. Ids are stringified integers assigned in pre-order
// starting at "0", so Nodes[i].ID == strconv.Itoa(i) for a valid graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Root  string `json:"root"`
}

// Node is one vertex of a [Graph].
type Node struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	StyleClass string `json:"class"`
	Kind       string `json:"kind,omitempty"`  // "tree", "tag" or "word"
	Depth      int    `json:"depth,omitempty"` // Distance from the root
}

// IsWord reports whether the node is a term leaf.
func (n *Node) IsWord() bool { return n.Kind == KindWord }

// Edge is a directed parent -> child link.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// EdgeID returns the identifier of the n-th edge created in one pass.
func EdgeID(n int) string { return "e" + strconv.Itoa(n) }

// Len returns the number of nodes.
func (g Graph) Len() int { return len(g.Nodes) }

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool { return len(g.Nodes) == 0 }

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(g.Nodes) || g.Nodes[i].ID != id {
		for _, n := range g.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Children returns the ids of id's children in edge order.
func (g Graph) Children(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Validate checks the structural guarantees of a normalized graph: dense
// pre-order ids, a root at "0", edges that reference known nodes, unique edge
// ids, and exactly one incoming edge for every non-root node.
func (g Graph) Validate() error {
	if g.Empty() {
		if len(g.Edges) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "graph has %d edges but no nodes", len(g.Edges))
		}
		return nil
	}
	for i, n := range g.Nodes {
		if want := strconv.Itoa(i); n.ID != want {
			return errors.New(errors.ErrCodeInvalidInput, "node %d has id %q, want %q", i, n.ID, want)
		}
	}
	if g.Root != g.Nodes[0].ID {
		return errors.New(errors.ErrCodeInvalidInput, "root %q is not the first node", g.Root)
	}

	incoming := make([]int, len(g.Nodes))
	edgeIDs := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if _, dup := edgeIDs[e.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}

		if _, ok := g.Node(e.Source); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s: unknown source %q", e.ID, e.Source)
		}
		if _, ok := g.Node(e.Target); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s: unknown target %q", e.ID, e.Target)
		}
		t, _ := strconv.Atoi(e.Target)
		incoming[t]++
	}

	for i, n := range incoming {
		switch {
		case i == 0 && n != 0:
			return errors.New(errors.ErrCodeInvalidInput, "root has %d incoming edges", n)
		case i > 0 && n != 1:
			return errors.New(errors.ErrCodeInvalidInput, "node %d has %d incoming edges, want 1", i, n)
		}
	}
	return nil
}
