package request

import "strings"

// Location is the closed set of parameter locations the builder understands.
type Location int

const (
	LocationUnknown Location = iota
	LocationPath
	LocationQuery
	LocationHeader
	LocationFormData
	LocationBody
)

func parseLocation(s string) Location {
	switch s {
	case "path":
		return LocationPath
	case "query":
		return LocationQuery
	case "header":
		return LocationHeader
	case "formData":
		return LocationFormData
	case "body":
		return LocationBody
	default:
		return LocationUnknown
	}
}

func (l Location) String() string {
	switch l {
	case LocationPath:
		return "path"
	case LocationQuery:
		return "query"
	case LocationHeader:
		return "header"
	case LocationFormData:
		return "formData"
	case LocationBody:
		return "body"
	default:
		return "unknown"
	}
}

// Style is the closed set of OpenAPI serialization styles.
type Style int

const (
	StyleForm Style = iota
	StyleMatrix
	StyleLabel
	StyleSpaceDelimited
	StylePipeDelimited
	StyleDeepObject
)

func parseStyle(s string) Style {
	switch s {
	case "matrix":
		return StyleMatrix
	case "label":
		return StyleLabel
	case "spaceDelimited":
		return StyleSpaceDelimited
	case "pipeDelimited":
		return StylePipeDelimited
	case "deepObject":
		return StyleDeepObject
	default:
		// form is the documented default for unspecified styles
		return StyleForm
	}
}

// separator is the literal joiner each style uses between serialized
// fragments. spaceDelimited inserts the percent-escaped space directly.
func (s Style) separator() string {
	switch s {
	case StyleMatrix:
		return ";"
	case StyleLabel:
		return "."
	case StyleSpaceDelimited:
		return "%20"
	case StylePipeDelimited:
		return "|"
	default:
		return "&"
	}
}

// mediaCategory is the closed set of Content-Type categories that choose the
// payload serialization strategy.
type mediaCategory int

const (
	mediaOther mediaCategory = iota
	mediaForm
	mediaJSON
)

func classifyMedia(contentType string) mediaCategory {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "application/x-www-form-urlencoded",
		strings.HasPrefix(ct, "multipart/form-data"):
		return mediaForm
	case strings.HasPrefix(ct, "application/") && strings.HasSuffix(ct, "json"):
		return mediaJSON
	case strings.HasSuffix(ct, "+json"):
		return mediaJSON
	default:
		return mediaOther
	}
}

// Parameter is a fully resolved parameter descriptor: after expansion it
// contains no references.
type Parameter struct {
	Name     string
	In       Location
	Required bool
	Schema   map[string]any
	Style    Style
	Explode  bool

	// hasLegacyType records a top-level "type" field, which pre-OpenAPI-3
	// parameters carried and which query serialization rejects.
	hasLegacyType bool
}

// schemaType returns the declared schema type, empty when no schema or type
// is present.
func (p Parameter) schemaType() string {
	if p.Schema == nil {
		return ""
	}
	t, _ := p.Schema["type"].(string)
	return t
}

// parseParameter converts a resolved raw parameter fragment into a typed
// descriptor. Fragments without a usable name or with an unknown location
// are dropped (reported via ok=false).
func parseParameter(raw map[string]any) (Parameter, bool) {
	name, _ := raw["name"].(string)
	if name == "" {
		return Parameter{}, false
	}
	in := parseLocation(asRawString(raw["in"]))
	if in == LocationUnknown {
		return Parameter{}, false
	}

	p := Parameter{
		Name:    name,
		In:      in,
		Style:   parseStyle(asRawString(raw["style"])),
		Explode: true,
	}
	if req, ok := raw["required"].(bool); ok {
		p.Required = req
	}
	if explode, ok := raw["explode"].(bool); ok {
		p.Explode = explode
	}
	if schema, ok := raw["schema"].(map[string]any); ok {
		p.Schema = schema
	}
	if _, ok := raw["type"]; ok {
		p.hasLegacyType = true
	}
	return p, true
}

func asRawString(v any) string {
	s, _ := v.(string)
	return s
}
