package normalize

import (
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/tree"
)

// TaggedTermNormalizer normalizes tagged-union term trees. A leaf word becomes
// a word node; a constructor becomes a tag node whose children are its field
// values in declaration order, with sequence fields contributing one child per
// element.
type TaggedTermNormalizer struct{}

var _ Normalizer[tree.Term] = TaggedTermNormalizer{}

// Surface implements [Normalizer].
func (TaggedTermNormalizer) Surface() string { return graph.SurfaceSensala }

// Normalize implements [Normalizer]. A nil term anywhere in the tree is a
// CONTRACT_VIOLATION.
func (TaggedTermNormalizer) Normalize(t tree.Term) (graph.Graph, error) {
	a := newArena(tree.TermSize(t))
	root, err := walkTerm(a, t, 0, "$")
	if err != nil {
		return graph.Graph{}, err
	}
	return a.graph(root), nil
}

func walkTerm(a *arena, t tree.Term, depth int, path string) (string, error) {
	switch v := t.(type) {
	case tree.Leaf:
		return a.alloc(v.Word, v.Word, graph.KindWord, depth), nil

	case tree.Tagged:
		id := a.alloc(v.Name, v.Name, graph.KindTag, depth)
		for _, f := range v.Fields {
			fieldPath := path + "." + v.Name + "." + f.Name
			if !f.Value.IsSeq && f.Value.Term == nil {
				return "", errors.New(errors.ErrCodeContractViolation, "field %s has no value", fieldPath)
			}
			for _, c := range f.Value.Children() {
				child, err := walkTerm(a, c, depth+1, fieldPath)
				if err != nil {
					return "", err
				}
				a.link(id, child)
			}
		}
		return id, nil

	case nil:
		return "", errors.New(errors.ErrCodeContractViolation, "missing term at %s", path)

	default:
		return "", errors.New(errors.ErrCodeContractViolation, "unrecognized term %T at %s", t, path)
	}
}
