package request

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/oaswire/oaswire/internal/spec"
)

// allowedSections is the fixed set of components sections a reference
// pointer may target.
var allowedSections = map[string]struct{}{
	"schemas":         {},
	"parameters":      {},
	"responses":       {},
	"requestBodies":   {},
	"headers":         {},
	"securitySchemes": {},
	"links":           {},
	"callbacks":       {},
	"examples":        {},
}

// Resolve returns a copy of fragment with every reference pointer replaced by
// the object it points to. The source document and the input fragment are
// left untouched. Resolution re-descends into substituted content, so nested
// references resolve too; revisiting a pointer within one resolution chain is
// an ErrReferenceCycle.
func Resolve(doc spec.Document, fragment any) (any, error) {
	return resolveFragment(doc, fragment, map[string]struct{}{})
}

func resolveFragment(doc spec.Document, fragment any, seen map[string]struct{}) (any, error) {
	switch node := fragment.(type) {
	case map[string]any:
		if rawRef, ok := node["$ref"]; ok {
			ref, ok := rawRef.(string)
			if !ok {
				return nil, &ReferenceError{Ref: fmt.Sprintf("%v", rawRef), Message: "reference pointer must be a string"}
			}
			return resolvePointer(doc, node, ref, seen)
		}
		out := make(map[string]any, len(node))
		for key, child := range node {
			resolved, err := resolveFragment(doc, child, seen)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			resolved, err := resolveFragment(doc, child, seen)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return fragment, nil
	}
}

// resolvePointer dereferences one pointer and re-descends into the result.
// Sibling keys of the $ref survive when the target lacks them, which is what
// lets a {schema: {$ref: ...}} sub-object resolve into its own contents.
func resolvePointer(doc spec.Document, node map[string]any, ref string, seen map[string]struct{}) (any, error) {
	if _, revisited := seen[ref]; revisited {
		return nil, &ReferenceError{Ref: ref, Cycle: true}
	}

	section, path, err := parsePointer(ref)
	if err != nil {
		return nil, err
	}

	target, err := dereference(doc, ref, section, path)
	if err != nil {
		return nil, err
	}

	seen[ref] = struct{}{}
	defer delete(seen, ref)

	targetMap, ok := target.(map[string]any)
	if !ok {
		return resolveFragment(doc, target, seen)
	}
	merged := make(map[string]any, len(targetMap)+len(node))
	for k, v := range targetMap {
		merged[k] = v
	}
	for k, v := range node {
		if k == "$ref" {
			continue
		}
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return resolveFragment(doc, merged, seen)
}

// parsePointer validates a reference pointer and splits it into its
// components section and the remaining name path. Pointers take the form
// "#/components/{section}/{name}", optionally prefixed by a well-formed URI.
func parsePointer(ref string) (section string, path []string, err error) {
	hash := strings.Index(ref, "#")
	if hash < 0 {
		return "", nil, &ReferenceError{Ref: ref, Message: "missing fragment"}
	}
	if uri := ref[:hash]; uri != "" {
		if _, perr := url.ParseRequestURI(uri); perr != nil {
			return "", nil, &ReferenceError{Ref: ref, Message: "malformed URI prefix"}
		}
	}

	fragment := ref[hash+1:]
	parts := strings.Split(strings.TrimPrefix(fragment, "/"), "/")
	if len(parts) < 3 || parts[0] != "components" {
		return "", nil, &ReferenceError{Ref: ref, Message: "pointer must target a components section"}
	}
	section = parts[1]
	if _, ok := allowedSections[section]; !ok {
		return "", nil, &ReferenceError{Ref: ref, Message: fmt.Sprintf("section %q is not allowed", section)}
	}
	path = parts[2:]
	for _, segment := range path {
		if segment == "" {
			return "", nil, &ReferenceError{Ref: ref, Message: "empty pointer segment"}
		}
	}
	return section, path, nil
}

func dereference(doc spec.Document, ref, section string, path []string) (any, error) {
	// a typed-nil map wrapped in any is non-nil, so check emptiness instead
	sectionMap := doc.ComponentSection(section)
	if len(sectionMap) == 0 {
		return nil, &ReferenceError{Ref: ref, Unresolvable: true}
	}
	current := any(sectionMap)
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, &ReferenceError{Ref: ref, Unresolvable: true}
		}
		next, ok := m[segment]
		if !ok {
			return nil, &ReferenceError{Ref: ref, Unresolvable: true}
		}
		current = next
	}
	return current, nil
}
