package tree

import (
	"bytes"
	"encoding/json"

	"github.com/sensala/viewer/pkg/errors"
)

// GenericTree is a labeled parse tree. Children may be empty (a leaf).
type GenericTree struct {
	Label    string        `json:"label"`
	NodeType string        `json:"nodeType"`
	Children []GenericTree `json:"children"`
}

// Size returns the total number of nodes in the tree.
func (t GenericTree) Size() int {
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}

// IsLeaf reports whether the node has no children.
func (t GenericTree) IsLeaf() bool { return len(t.Children) == 0 }

// UnmarshalJSON decodes a generic tree and rejects payloads that are not
// objects or lack a label or node type.
func (t *GenericTree) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return errors.New(errors.ErrCodeContractViolation, "parse tree node must be an object")
	}

	var raw struct {
		Label    *string       `json:"label"`
		NodeType *string       `json:"nodeType"`
		Children []GenericTree `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeContractViolation, err, "decode parse tree")
	}
	if raw.Label == nil {
		return errors.New(errors.ErrCodeContractViolation, "parse tree node missing label")
	}
	if raw.NodeType == nil {
		return errors.New(errors.ErrCodeContractViolation, "parse tree node %q missing nodeType", *raw.Label)
	}

	t.Label = *raw.Label
	t.NodeType = *raw.NodeType
	t.Children = raw.Children
	return nil
}

// DecodeGenericTree decodes a generic tree from raw JSON.
func DecodeGenericTree(data []byte) (GenericTree, error) {
	var t GenericTree
	if err := json.Unmarshal(data, &t); err != nil {
		if errors.GetCode(err) != "" {
			return GenericTree{}, err
		}
		return GenericTree{}, errors.Wrap(errors.ErrCodeContractViolation, err, "decode parse tree")
	}
	return t, nil
}
