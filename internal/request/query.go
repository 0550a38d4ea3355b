package request

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// queryFragment serializes one query parameter into its query-string
// fragment according to the style x explode x type matrix. ok=false means
// the parameter contributes nothing (no schema, or no renderable content).
func queryFragment(p Parameter, value any) (string, bool, error) {
	if p.hasLegacyType {
		return "", false, &FieldError{Parameter: p.Name, Field: "type"}
	}
	if p.Schema == nil {
		return "", false, nil
	}

	switch p.schemaType() {
	case "array":
		return serializeArray(p, value), true, nil
	case "object":
		return serializeObject(p, value), true, nil
	default:
		return escape(p.Name) + "=" + escape(stringify(value)), true, nil
	}
}

// serializeArray renders array-valued parameters. With explode off, the
// escaped element values join under one name with the style's separator;
// with explode on, each element becomes its own name[]=value pair (or a
// nested structured block for composite elements) and the pairs join with
// the style's separator.
func serializeArray(p Parameter, value any) string {
	items := toSlice(value)
	sep := p.Style.separator()

	if !p.Explode {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, escape(stringify(item)))
		}
		return escape(p.Name) + "=" + strings.Join(parts, sep)
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch item.(type) {
		case map[string]any, map[any]any, []any:
			parts = append(parts, strings.Join(nestedQuery(escape(p.Name)+"[]", item), "&"))
		default:
			parts = append(parts, escape(p.Name)+"[]="+escape(stringify(item)))
		}
	}
	return strings.Join(parts, sep)
}

// serializeObject renders object-valued parameters. deepObject always
// explodes into name[key]=value pairs; form with explode renders one
// flattened key-per-field block; form without explode renders a single
// comma-joined key,value,... pair under the parameter's own name.
func serializeObject(p Parameter, value any) string {
	fields := toMap(value)

	if p.Style == StyleDeepObject {
		return strings.Join(nestedQuery(escape(p.Name), fields), "&")
	}

	keys := sortedKeys(fields)
	if p.Explode {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			v := fields[k]
			switch v.(type) {
			case map[string]any, map[any]any, []any:
				parts = append(parts, strings.Join(nestedQuery(escape(k), v), "&"))
			default:
				parts = append(parts, escape(k)+"="+escape(stringify(v)))
			}
		}
		return strings.Join(parts, "&")
	}

	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, escape(k), escape(stringify(fields[k])))
	}
	return escape(p.Name) + "=" + strings.Join(parts, ",")
}

// nestedQuery renders a composite value as name[key]=value / name[]=value
// pairs. Name and key segments are escaped individually; the brackets stay
// structural, and already-composed values are not escaped again.
func nestedQuery(prefix string, value any) []string {
	switch v := value.(type) {
	case map[string]any:
		var out []string
		for _, k := range sortedKeys(v) {
			out = append(out, nestedQuery(prefix+"["+escape(k)+"]", v[k])...)
		}
		return out
	case map[any]any:
		return nestedQuery(prefix, normalizeMap(v))
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, nestedQuery(prefix+"[]", item)...)
		}
		return out
	default:
		return []string{prefix + "=" + escape(stringify(v))}
	}
}

func toSlice(value any) []any {
	if items, ok := value.([]any); ok {
		return items
	}
	return []any{value}
}

func toMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[any]any:
		return normalizeMap(v)
	default:
		return map[string]any{}
	}
}

func normalizeMap(src map[any]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[canonicalKey(k)] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escape(s string) string {
	return url.QueryEscape(s)
}

// stringify renders a supplied scalar value the way it should appear on the
// wire: strings verbatim, everything else in its default formatting.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
