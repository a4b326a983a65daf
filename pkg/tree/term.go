package tree

// Term is a node of a tagged-union term tree: either a [Leaf] or a [Tagged]
// constructor. The interface is sealed; only this package defines variants.
type Term interface {
	isTerm()
}

// Leaf is a plain word at the bottom of a term tree.
type Leaf struct {
	Word string
}

// Tagged is a constructor application: a tag name with ordered fields.
type Tagged struct {
	Name   string
	Fields []Field
}

func (Leaf) isTerm()   {}
func (Tagged) isTerm() {}

// Field is one named field of a [Tagged] term, in declaration order.
type Field struct {
	Name  string
	Value FieldValue
}

// FieldValue is either a single term or a sequence of terms. Exactly one of
// Term and Seq is meaningful, selected by IsSeq.
type FieldValue struct {
	Term  Term
	Seq   []Element
	IsSeq bool
}

// Element is one entry of a sequence field. Wrapper is the key of the
// single-key object the entry was wrapped in on the wire; Term is its
// unwrapped value.
type Element struct {
	Wrapper string
	Term    Term
}

// Single returns a field value holding one term.
func Single(t Term) FieldValue { return FieldValue{Term: t} }

// Sequence returns a field value holding an ordered list of elements.
func Sequence(elems ...Element) FieldValue { return FieldValue{Seq: elems, IsSeq: true} }

// Children returns the child terms of v in order.
func (v FieldValue) Children() []Term {
	if !v.IsSeq {
		if v.Term == nil {
			return nil
		}
		return []Term{v.Term}
	}
	out := make([]Term, len(v.Seq))
	for i, e := range v.Seq {
		out[i] = e.Term
	}
	return out
}

// Word builds a leaf term.
func Word(s string) Term { return Leaf{Word: s} }

// Tag builds a tagged term from fields in declaration order.
func Tag(name string, fields ...Field) Term { return Tagged{Name: name, Fields: fields} }

// F builds a single-valued field.
func F(name string, t Term) Field { return Field{Name: name, Value: Single(t)} }

// FSeq builds a sequence field whose elements share one wrapper key.
func FSeq(name, wrapper string, terms ...Term) Field {
	elems := make([]Element, len(terms))
	for i, t := range terms {
		elems[i] = Element{Wrapper: wrapper, Term: t}
	}
	return Field{Name: name, Value: Sequence(elems...)}
}

// TermSize returns the number of nodes a term contributes to a graph.
// A nil term counts as zero.
func TermSize(t Term) int {
	switch v := t.(type) {
	case Leaf:
		return 1
	case Tagged:
		n := 1
		for _, f := range v.Fields {
			for _, c := range f.Value.Children() {
				n += TermSize(c)
			}
		}
		return n
	default:
		return 0
	}
}
