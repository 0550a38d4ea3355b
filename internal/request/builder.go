package request

import (
	"strings"

	"github.com/oaswire/oaswire/internal/spec"
)

// Request is the wire-ready request descriptor. It is constructed once per
// build and never mutated afterwards.
type Request struct {
	Verb    string
	Path    string
	Headers map[string]string
	// Payload is a JSON text string, a structural form-field mapping, a
	// raw passthrough value, or nil when the operation has no body.
	Payload any
}

// Build assembles the request descriptor for one operation. values and
// headers are the caller-supplied mappings (any mapping type; keys are
// normalized at this boundary). Every failure aborts the build; there is no
// partial result.
func Build(doc spec.Document, op *spec.Operation, values, headers any) (*Request, error) {
	suppliedValues, err := NewValues("values", values)
	if err != nil {
		return nil, err
	}
	suppliedHeaders, err := NewValues("headers", headers)
	if err != nil {
		return nil, err
	}

	params, err := expandParameters(doc, op, suppliedValues, suppliedHeaders)
	if err != nil {
		return nil, err
	}

	path, err := buildPath(doc, op, params, suppliedValues)
	if err != nil {
		return nil, err
	}

	hdrs, err := buildHeaders(op, params, suppliedHeaders)
	if err != nil {
		return nil, err
	}

	// Payload construction must run after headers: Content-Type picks the
	// serialization strategy.
	payload, err := buildPayload(params, hdrs, suppliedValues)
	if err != nil {
		return nil, err
	}

	return &Request{
		Verb:    strings.ToUpper(string(op.Verb)),
		Path:    path,
		Headers: hdrs,
		Payload: payload,
	}, nil
}
