package normalize

import (
	"strconv"

	"github.com/sensala/viewer/pkg/graph"
)

// Normalizer converts one source tree encoding into a [graph.Graph].
type Normalizer[T any] interface {
	// Normalize walks the tree and returns its graph. Each call starts with
	// fresh counters, so normalizing the same tree twice yields equal graphs.
	Normalize(tree T) (graph.Graph, error)

	// Surface returns the name of the rendering surface the graph is for.
	Surface() string
}

// arena accumulates the node table and edge list of one traversal.
// Node and edge ids come from explicit counters, never from table sizes.
type arena struct {
	nodes    []graph.Node
	edges    []graph.Edge
	nextNode int
	nextEdge int
}

func newArena(sizeHint int) *arena {
	if sizeHint < 1 {
		sizeHint = 1
	}
	return &arena{
		nodes: make([]graph.Node, 0, sizeHint),
		edges: make([]graph.Edge, 0, sizeHint-1),
	}
}

// alloc records a node under the next id and returns that id.
func (a *arena) alloc(label, class, kind string, depth int) string {
	id := strconv.Itoa(a.nextNode)
	a.nextNode++
	a.nodes = append(a.nodes, graph.Node{
		ID:         id,
		Label:      label,
		StyleClass: class,
		Kind:       kind,
		Depth:      depth,
	})
	return id
}

// link records a parent -> child edge under the next edge id.
func (a *arena) link(parent, child string) {
	a.edges = append(a.edges, graph.Edge{
		ID:     graph.EdgeID(a.nextEdge),
		Source: parent,
		Target: child,
	})
	a.nextEdge++
}

func (a *arena) graph(root string) graph.Graph {
	return graph.Graph{Nodes: a.nodes, Edges: a.edges, Root: root}
}
