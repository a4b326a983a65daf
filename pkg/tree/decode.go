package tree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sensala/viewer/pkg/errors"
)

// maxTermDepth bounds recursion while decoding untrusted payloads.
const maxTermDepth = 512

// member is one key/value pair of a JSON object, in document order.
type member struct {
	key   string
	value json.RawMessage
}

// DecodeTerm decodes a tagged term from raw JSON, preserving field order.
func DecodeTerm(data []byte) (Term, error) {
	return decodeTerm(data, "$", 0)
}

func decodeTerm(data []byte, path string, depth int) (Term, error) {
	if depth > maxTermDepth {
		return nil, errors.New(errors.ErrCodeContractViolation, "term nested deeper than %d at %s", maxTermDepth, path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeContractViolation, "empty term at %s", path)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "decode word at %s", path)
		}
		return Leaf{Word: s}, nil
	case '{':
		return decodeTagged(trimmed, path, depth)
	default:
		return nil, errors.New(errors.ErrCodeContractViolation, "term at %s must be a string or a single-key object", path)
	}
}

func decodeTagged(data []byte, path string, depth int) (Term, error) {
	members, err := readObject(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "decode tag at %s", path)
	}
	if len(members) != 1 {
		return nil, errors.New(errors.ErrCodeContractViolation, "tag at %s must have exactly one key, got %d", path, len(members))
	}

	name := members[0].key
	tagPath := path + "." + name
	body := bytes.TrimSpace(members[0].value)
	if len(body) == 0 || body[0] != '{' {
		return nil, errors.New(errors.ErrCodeContractViolation, "fields of %s must be an object", tagPath)
	}

	rawFields, err := readObject(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "decode fields of %s", tagPath)
	}

	fields := make([]Field, 0, len(rawFields))
	for _, rf := range rawFields {
		fieldPath := tagPath + "." + rf.key
		value, err := decodeFieldValue(rf.value, fieldPath, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: rf.key, Value: value})
	}
	return Tagged{Name: name, Fields: fields}, nil
}

func decodeFieldValue(data []byte, path string, depth int) (FieldValue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		t, err := decodeTerm(trimmed, path, depth)
		if err != nil {
			return FieldValue{}, err
		}
		return Single(t), nil
	}

	var rawElems []json.RawMessage
	if err := json.Unmarshal(trimmed, &rawElems); err != nil {
		return FieldValue{}, errors.Wrap(errors.ErrCodeContractViolation, err, "decode sequence at %s", path)
	}

	elems := make([]Element, 0, len(rawElems))
	for i, re := range rawElems {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		re = bytes.TrimSpace(re)
		if len(re) == 0 || re[0] != '{' {
			return FieldValue{}, errors.New(errors.ErrCodeContractViolation, "sequence element %s must be a single-key object", elemPath)
		}
		wrapper, err := readObject(re)
		if err != nil {
			return FieldValue{}, errors.Wrap(errors.ErrCodeContractViolation, err, "decode sequence element %s", elemPath)
		}
		if len(wrapper) != 1 {
			return FieldValue{}, errors.New(errors.ErrCodeContractViolation, "sequence element %s must have exactly one key, got %d", elemPath, len(wrapper))
		}
		t, err := decodeTerm(wrapper[0].value, elemPath+"."+wrapper[0].key, depth+1)
		if err != nil {
			return FieldValue{}, err
		}
		elems = append(elems, Element{Wrapper: wrapper[0].key, Term: t})
	}
	return Sequence(elems...), nil
}

// readObject returns the members of a JSON object in document order.
func readObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		members = append(members, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}
