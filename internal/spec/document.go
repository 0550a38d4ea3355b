package spec

import (
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the raw API description tree as parsed from YAML or JSON.
// Request building operates on this generic form rather than a typed model
// because reference resolution has to descend into arbitrary fragments.
// A Document is read-mostly: builders never modify it.
type Document map[string]any

// UnmarshalYAML decodes through a plain map so nested mappings come back as
// map[string]any. Decoding straight into the named map type would make yaml
// reuse Document for every nested mapping, and the accessors and the
// reference resolver assert on map[string]any.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	*d = m
	return nil
}

// Components returns the components section, or nil when absent.
func (d Document) Components() map[string]any {
	c, _ := d["components"].(map[string]any)
	return c
}

// ComponentSection returns one named section under components
// (schemas, parameters, securitySchemes, ...), or nil when absent.
func (d Document) ComponentSection(section string) map[string]any {
	c := d.Components()
	if c == nil {
		return nil
	}
	s, _ := c[section].(map[string]any)
	return s
}

// SecuritySchemes returns the registered security schemes. OpenAPI 3
// documents keep them under components.securitySchemes; Swagger 2.0
// documents use the top-level securityDefinitions section.
func (d Document) SecuritySchemes() map[string]any {
	if s := d.ComponentSection("securitySchemes"); s != nil {
		return s
	}
	s, _ := d["securityDefinitions"].(map[string]any)
	return s
}

// Security returns the document-level security requirements.
func (d Document) Security() []any {
	s, _ := d["security"].([]any)
	return s
}

// Servers returns the declared server entries.
func (d Document) Servers() []any {
	s, _ := d["servers"].([]any)
	return s
}

// BasePath renders the first declared server entry with its variable
// defaults substituted. Documents without servers yield an empty base.
func (d Document) BasePath() string {
	servers := d.Servers()
	if len(servers) == 0 {
		return ""
	}
	first, _ := servers[0].(map[string]any)
	if first == nil {
		return ""
	}
	raw := asString(first["url"])
	vars, _ := first["variables"].(map[string]any)
	for name, v := range vars {
		vm, _ := v.(map[string]any)
		if vm == nil {
			continue
		}
		if def := asString(vm["default"]); def != "" {
			raw = strings.ReplaceAll(raw, "{"+name+"}", def)
		}
	}
	return raw
}

// Host returns the host the document declares: the Swagger 2.0 host field
// if present, otherwise the authority of the first server URL.
func (d Document) Host() string {
	if h := strings.TrimSpace(asString(d["host"])); h != "" {
		return h
	}
	servers := d.Servers()
	if len(servers) == 0 {
		return ""
	}
	first, _ := servers[0].(map[string]any)
	if first == nil {
		return ""
	}
	u, err := url.Parse(asString(first["url"]))
	if err != nil {
		return ""
	}
	return u.Host
}

// Consumes returns the document-level request media types (Swagger 2.0).
func (d Document) Consumes() []string {
	return asStringSlice(d["consumes"])
}

// Produces returns the document-level response media types (Swagger 2.0).
func (d Document) Produces() []string {
	return asStringSlice(d["produces"])
}

// Paths returns the paths section, or nil when absent.
func (d Document) Paths() map[string]any {
	p, _ := d["paths"].(map[string]any)
	return p
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	items, _ := v.([]any)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
