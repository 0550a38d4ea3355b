package spec

import (
	"regexp"
	"sort"
	"strings"
)

// BuildOption configures how operations are extracted from a Document.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the provided regular expressions. Invalid patterns never match.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

var operationVerbs = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

// Operations extracts every operation declared in the document, in sorted
// path order with a stable verb order per path. Filters apply in the order
// method, path pattern, tags.
func Operations(doc Document, opts ...BuildOption) []Operation {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	paths := doc.Paths()
	if len(paths) == 0 {
		return nil
	}
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var out []Operation
	for _, p := range pathKeys {
		item, _ := paths[p].(map[string]any)
		if item == nil {
			continue
		}
		itemParams, _ := item["parameters"].([]any)

		for _, verb := range operationVerbs {
			raw, ok := item[string(verb)]
			if !ok {
				continue
			}
			opNode, _ := raw.(map[string]any)
			if opNode == nil {
				continue
			}
			if len(cfg.methods) > 0 {
				if _, ok := cfg.methods[verb]; !ok {
					continue
				}
			}
			if len(cfg.pathRes) > 0 {
				matched := false
				for _, re := range cfg.pathRes {
					if re.MatchString(p) {
						matched = true
						break
					}
				}
				if !matched {
					continue
				}
			}

			tags := cleanTags(opNode["tags"])
			if !allowByTags(tags, cfg) {
				continue
			}

			op := Operation{
				ID:      string(verb) + " " + p,
				Verb:    verb,
				Path:    p,
				Summary: strings.TrimSpace(asString(opNode["summary"])),
				Tags:    tags,
				Host:    doc.Host(),
			}
			if params, ok := opNode["parameters"].([]any); ok {
				op.Parameters = params
			}
			op.PathItemParameters = itemParams
			if sec, ok := opNode["security"].([]any); ok {
				op.Security = sec
				op.HasSecurity = true
			}
			if h := strings.TrimSpace(asString(opNode["host"])); h != "" {
				op.Host = h
			}
			op.Consumes = mediaTypesFor(doc, opNode, "consumes")
			op.Produces = mediaTypesFor(doc, opNode, "produces")

			out = append(out, op)
		}
	}
	return out
}

// FindOperation locates an operation by its selector, e.g. "GET /pets/{id}".
// Verb matching is case-insensitive; the path must match exactly.
func FindOperation(doc Document, selector string) (*Operation, bool) {
	fields := strings.Fields(strings.TrimSpace(selector))
	if len(fields) != 2 {
		return nil, false
	}
	verb := HttpMethod(strings.ToLower(fields[0]))
	path := fields[1]
	for _, op := range Operations(doc) {
		if op.Verb == verb && op.Path == path {
			return &op, true
		}
	}
	return nil, false
}

// mediaTypesFor resolves the effective consumes/produces list for one
// operation: the operation-level Swagger 2.0 list wins, then the
// document-level one, then the media types declared in the operation's
// requestBody (consumes) or responses (produces) content maps.
func mediaTypesFor(doc Document, opNode map[string]any, field string) []string {
	if list := asStringSlice(opNode[field]); len(list) > 0 {
		return list
	}
	var docList []string
	if field == "consumes" {
		docList = doc.Consumes()
	} else {
		docList = doc.Produces()
	}
	if len(docList) > 0 {
		return docList
	}
	if field == "consumes" {
		if rb, ok := opNode["requestBody"].(map[string]any); ok {
			return contentMediaTypes(rb["content"])
		}
		return nil
	}
	responses, _ := opNode["responses"].(map[string]any)
	if len(responses) == 0 {
		return nil
	}
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		resp, _ := responses[code].(map[string]any)
		if resp == nil {
			continue
		}
		if types := contentMediaTypes(resp["content"]); len(types) > 0 {
			return types
		}
	}
	return nil
}

func contentMediaTypes(v any) []string {
	content, _ := v.(map[string]any)
	if len(content) == 0 {
		return nil
	}
	types := make([]string, 0, len(content))
	for mime := range content {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(cfg.excludeTags) > 0 {
		for _, t := range tags {
			if _, blocked := cfg.excludeTags[t]; blocked {
				return false
			}
		}
	}
	return true
}

func cleanTags(v any) []string {
	items, _ := v.([]any)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
