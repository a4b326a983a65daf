package sensala

import (
	"bytes"
	"encoding/json"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/tree"
)

// ResultCount is the number of envelopes a well-formed response carries.
const ResultCount = 3

// Response is a decoded interpretation.
type Response struct {
	ParseTree tree.GenericTree // Result 0
	Term      tree.Term        // Result 1
	Result    string           // Result 2

	// Raw is the response body as received, kept for export and caching.
	Raw json.RawMessage
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

// Parse decodes and checks a response body.
func Parse(body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New(errors.ErrCodeContractViolation, "response must be a JSON array")
	}

	var envs []envelope
	if err := json.Unmarshal(trimmed, &envs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "decode response")
	}
	if len(envs) != ResultCount {
		return nil, errors.New(errors.ErrCodeContractViolation, "expected %d results, got %d", ResultCount, len(envs))
	}
	for i, e := range envs {
		if len(e.Result) == 0 {
			return nil, errors.New(errors.ErrCodeContractViolation, "result %d has no result field", i)
		}
	}

	parseTree, err := tree.DecodeGenericTree(envs[0].Result)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "result 0")
	}
	term, err := tree.DecodeTerm(envs[1].Result)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "result 1")
	}
	text, err := decodeText(envs[2].Result)
	if err != nil {
		return nil, err
	}

	return &Response{
		ParseTree: parseTree,
		Term:      term,
		Result:    text,
		Raw:       json.RawMessage(trimmed),
	}, nil
}

func decodeText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", errors.New(errors.ErrCodeContractViolation, "result 2 must be a string")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.Wrap(errors.ErrCodeContractViolation, err, "result 2")
	}
	return s, nil
}
