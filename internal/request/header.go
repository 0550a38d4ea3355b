package request

import (
	"strings"

	"github.com/oaswire/oaswire/internal/spec"
)

// canonicalHeaderNames maps negotiation header names to their transport
// form. Every other header parameter name passes through unchanged.
var canonicalHeaderNames = map[string]string{
	"accept":        "Accept",
	"content-type":  "Content-Type",
	"content_type":  "Content-Type",
	"authorization": "Authorization",
	"host":          "Host",
}

func canonicalHeaderName(name string) string {
	if canonical, ok := canonicalHeaderNames[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// buildHeaders produces the canonical header mapping: every expanded header
// parameter resolved from the supplied headers, plus Accept, Content-Type
// and Host negotiation.
func buildHeaders(op *spec.Operation, params []Parameter, headers Values) (map[string]string, error) {
	out := map[string]string{}

	for _, p := range params {
		if p.In != LocationHeader {
			continue
		}
		value, ok := headers.Lookup(p.Name)
		if !ok {
			return nil, &MissingValueError{Parameter: p.Name, In: "header"}
		}
		out[canonicalHeaderName(p.Name)] = stringify(value)
	}

	if accept, ok := headers.Lookup("Accept"); ok {
		out["Accept"] = stringify(accept)
	} else if len(op.Produces) > 0 {
		out["Accept"] = op.Produces[0]
	}

	if contentType, ok := headers.Lookup("Content-Type"); ok {
		out["Content-Type"] = stringify(contentType)
	} else if len(op.Consumes) > 0 {
		out["Content-Type"] = op.Consumes[0]
	}

	host := op.Host
	if override, ok := headers.Lookup("Host"); ok {
		host = stringify(override)
	}
	if strings.TrimSpace(host) != "" {
		out["Host"] = host
	}

	return out, nil
}
