package request

import (
	"strings"

	"github.com/oaswire/oaswire/internal/spec"
)

// buildPath renders the final path component of the request: the document's
// base path (first server entry with variable defaults substituted) plus the
// operation's path template with every path parameter substituted, plus the
// serialized query string.
func buildPath(doc spec.Document, op *spec.Operation, params []Parameter, values Values) (string, error) {
	path := doc.BasePath() + op.Path

	for _, p := range params {
		if p.In != LocationPath {
			continue
		}
		value, ok := values.Lookup(p.Name)
		if !ok {
			return "", &MissingValueError{Parameter: p.Name, In: "path"}
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", stringify(value))
	}

	first := true
	for _, p := range params {
		if p.In != LocationQuery {
			continue
		}
		value, ok := values.Lookup(p.Name)
		if !ok {
			continue
		}
		fragment, ok, err := queryFragment(p, value)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		if first {
			path += "?"
			first = false
		} else {
			path += "&"
		}
		path += fragment
	}
	return path, nil
}
