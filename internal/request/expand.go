package request

import (
	"github.com/oaswire/oaswire/internal/spec"
)

// expandParameters produces the final ordered parameter list used by every
// downstream builder: operation-level parameters first, then path-item-level
// ones, then security-derived ones, each resolved, de-duplicated by name with
// the first occurrence winning, and with unsupplied optional non-path
// parameters dropped. The operation's own parameter sequences are never
// mutated.
func expandParameters(doc spec.Document, op *spec.Operation, values, headers Values) ([]Parameter, error) {
	derived, err := deriveSecurityParameters(doc, op)
	if err != nil {
		return nil, err
	}

	raw := make([]any, 0, len(op.Parameters)+len(op.PathItemParameters)+len(derived))
	raw = append(raw, op.Parameters...)
	raw = append(raw, op.PathItemParameters...)
	raw = append(raw, derived...)

	seen := make(map[string]struct{}, len(raw))
	out := make([]Parameter, 0, len(raw))
	for _, fragment := range raw {
		resolved, err := Resolve(doc, fragment)
		if err != nil {
			return nil, err
		}
		node, ok := resolved.(map[string]any)
		if !ok {
			continue
		}
		param, ok := parseParameter(node)
		if !ok {
			continue
		}
		if _, dup := seen[param.Name]; dup {
			continue
		}
		seen[param.Name] = struct{}{}

		// path parameters are always consumed: dropping one would leave its
		// placeholder in the rendered template
		if !param.Required && param.In != LocationPath &&
			!values.Has(param.Name) && !headers.Has(param.Name) {
			continue
		}
		out = append(out, param)
	}
	return out, nil
}
