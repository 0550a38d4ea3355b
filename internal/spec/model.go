package spec

// Operation metadata extracted from a Document, as consumed by the request
// builder. Parameter lists are kept in their raw form because they may still
// contain unresolved references.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Operation describes a single verb+path entry of the document.
type Operation struct {
	ID      string // method + " " + path
	Verb    HttpMethod
	Path    string
	Summary string
	Tags    []string

	// Parameters holds the raw operation-level parameter fragments and
	// PathItemParameters the raw path-item-level ones. Both are read-only
	// to the request builder, which copies before resolving.
	Parameters         []any
	PathItemParameters []any

	// Security holds the operation's security requirements. HasSecurity
	// distinguishes "declared empty" (auth disabled for this operation)
	// from "absent" (fall back to the document-level requirements).
	Security    []any
	HasSecurity bool

	// Consumes and Produces are the effective media-type lists after
	// operation-over-document precedence has been applied.
	Consumes []string
	Produces []string

	// Host is the effective host for the operation, blank when the
	// document declares none.
	Host string
}
