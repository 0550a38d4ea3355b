package request

import (
	"sort"

	"github.com/oaswire/oaswire/internal/spec"
)

// deriveSecurityParameters converts the operation's security requirements
// (falling back to the document-level ones) into synthetic raw parameter
// fragments. An apiKey scheme contributes a parameter at the scheme's own
// name and location; every other scheme type contributes an Authorization
// header. A derived parameter is required only when the requirement set
// names exactly one scheme in total.
func deriveSecurityParameters(doc spec.Document, op *spec.Operation) ([]any, error) {
	requirements := op.Security
	if !op.HasSecurity {
		requirements = doc.Security()
	}
	if len(requirements) == 0 {
		return nil, nil
	}

	var names []string
	for _, req := range requirements {
		reqMap, ok := req.(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(reqMap))
		for name := range reqMap {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		names = append(names, keys...)
	}
	required := len(names) == 1

	schemes := doc.SecuritySchemes()
	out := make([]any, 0, len(names))
	for _, name := range names {
		rawScheme, ok := schemes[name]
		if !ok {
			return nil, &ReferenceError{Ref: "#/components/securitySchemes/" + name, Unresolvable: true}
		}
		resolved, err := Resolve(doc, rawScheme)
		if err != nil {
			return nil, err
		}
		scheme, _ := resolved.(map[string]any)
		if scheme == nil {
			return nil, &ReferenceError{Ref: "#/components/securitySchemes/" + name, Unresolvable: true}
		}
		out = append(out, syntheticParameter(scheme, required))
	}
	return out, nil
}

func syntheticParameter(scheme map[string]any, required bool) map[string]any {
	param := map[string]any{
		"name":     "Authorization",
		"in":       "header",
		"required": required,
		"schema":   map[string]any{"type": "string"},
	}
	if asRawString(scheme["type"]) == "apiKey" {
		if name := asRawString(scheme["name"]); name != "" {
			param["name"] = name
		}
		if in := asRawString(scheme["in"]); in != "" {
			param["in"] = in
		}
	}
	return param
}
