package normalize

import (
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/tree"
)

// GenericTreeNormalizer normalizes labeled parse trees. Each tree node becomes
// a graph node labeled with the tree label and styled by its node type.
type GenericTreeNormalizer struct{}

var _ Normalizer[tree.GenericTree] = GenericTreeNormalizer{}

// Surface implements [Normalizer].
func (GenericTreeNormalizer) Surface() string { return graph.SurfaceStanford }

// Normalize implements [Normalizer]. The result has t.Size() nodes and
// t.Size()-1 edges. It never fails for a decoded tree.
func (GenericTreeNormalizer) Normalize(t tree.GenericTree) (graph.Graph, error) {
	a := newArena(t.Size())
	root := walkGeneric(a, t, 0)
	return a.graph(root), nil
}

func walkGeneric(a *arena, t tree.GenericTree, depth int) string {
	id := a.alloc(t.Label, t.NodeType, graph.KindTree, depth)
	for _, c := range t.Children {
		child := walkGeneric(a, c, depth+1)
		a.link(id, child)
	}
	return id
}
