// Package request turns an OpenAPI operation description plus caller-supplied
// concrete values into a wire-ready HTTP request descriptor: resolved path
// with query string, canonical headers, and a serialized body.
//
// The package is purely synchronous and performs no I/O. Reference
// resolution is a pure function over the source document; concurrent builds
// against the same document are safe.
package request
