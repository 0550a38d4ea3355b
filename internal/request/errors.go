package request

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is(). Every build failure matches
// exactly one of these; all of them abort the build.
var (
	// ErrInvalidReference indicates a malformed reference pointer or one
	// outside the allowed components sections.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrUnresolvableReference indicates a well-formed pointer that does
	// not dereference to any object in the document.
	ErrUnresolvableReference = errors.New("unresolvable reference")

	// ErrReferenceCycle indicates a reference pointer was revisited within
	// one resolution chain.
	ErrReferenceCycle = errors.New("reference cycle")

	// ErrMissingValue indicates a path or header parameter required for
	// rendering has no supplied value.
	ErrMissingValue = errors.New("missing value")

	// ErrMissingBodyParameter indicates a declared body parameter has no
	// supplied value.
	ErrMissingBodyParameter = errors.New("missing body parameter")

	// ErrInvalidArgument indicates a supplied value or header source is
	// not a key-value mapping.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidField indicates a parameter declares the disallowed
	// legacy top-level "type" field.
	ErrInvalidField = errors.New("invalid field")
)

// ReferenceError reports a failed reference resolution. Exactly one of the
// flags distinguishes the failure mode; the zero flags mean the pointer
// itself was invalid.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve.
	Ref string
	// Unresolvable is true when the pointer is well-formed but does not
	// dereference to any object.
	Unresolvable bool
	// Cycle is true when the pointer was revisited during one resolution.
	Cycle bool
	// Message provides additional context about the failure.
	Message string
}

func (e *ReferenceError) Error() string {
	kind := "invalid reference"
	switch {
	case e.Cycle:
		kind = "reference cycle"
	case e.Unresolvable:
		kind = "unresolvable reference"
	}
	msg := fmt.Sprintf("%s: %q", kind, e.Ref)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ReferenceError) Is(target error) bool {
	switch {
	case e.Cycle:
		return target == ErrReferenceCycle
	case e.Unresolvable:
		return target == ErrUnresolvableReference
	default:
		return target == ErrInvalidReference
	}
}

// MissingValueError reports a parameter that must be rendered but has no
// entry in the supplied mappings.
type MissingValueError struct {
	// Parameter is the name of the parameter missing a value.
	Parameter string
	// In is the parameter location ("path", "query", "header", "formData").
	In string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing value for %s parameter %q: supply it in the enclosing example context", e.In, e.Parameter)
}

func (e *MissingValueError) Is(target error) bool { return target == ErrMissingValue }

// MissingBodyError reports a declared body parameter with no supplied value.
// It is distinct from MissingValueError and carries remediation guidance.
type MissingBodyError struct {
	// Parameter is the name of the body parameter.
	Parameter string
}

func (e *MissingBodyError) Error() string {
	return fmt.Sprintf("missing body parameter %q: bind a value named %q in the enclosing example context so the request payload can be built", e.Parameter, e.Parameter)
}

func (e *MissingBodyError) Is(target error) bool { return target == ErrMissingBodyParameter }

// ArgumentError reports a supplied-values or supplied-headers source that is
// not a key-value mapping.
type ArgumentError struct {
	// Name identifies the offending source ("values" or "headers").
	Name string
	// Value is the rejected source.
	Value any
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: supplied %s must be a key-value mapping, got %T", e.Name, e.Value)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// FieldError reports a parameter carrying a disallowed field.
type FieldError struct {
	// Parameter is the name of the offending parameter.
	Parameter string
	// Field is the disallowed field name.
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q on parameter %q: declare a schema instead", e.Field, e.Parameter)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }
