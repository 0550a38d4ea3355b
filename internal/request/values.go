package request

import (
	"fmt"
	"reflect"
)

// Values holds caller-supplied values keyed by parameter name. Keys are
// normalized to strings at construction so lookups succeed regardless of the
// key type the source mapping used (YAML decoding may yield non-string keys).
type Values struct {
	m map[string]any
}

// NewValues normalizes a caller-supplied mapping into Values. The name
// identifies the source in error messages ("values" or "headers"). A nil
// source yields an empty, usable Values; any non-mapping source is an
// ArgumentError.
func NewValues(name string, src any) (Values, error) {
	out := Values{m: map[string]any{}}
	switch s := src.(type) {
	case nil:
	case Values:
		return s, nil
	case map[string]any:
		for k, v := range s {
			out.m[k] = v
		}
	case map[any]any:
		for k, v := range s {
			out.m[canonicalKey(k)] = v
		}
	case map[string]string:
		for k, v := range s {
			out.m[k] = v
		}
	default:
		// any other map kind is still a key-value mapping
		rv := reflect.ValueOf(src)
		if rv.Kind() != reflect.Map {
			return Values{}, &ArgumentError{Name: name, Value: src}
		}
		for it := rv.MapRange(); it.Next(); {
			out.m[canonicalKey(it.Key().Interface())] = it.Value().Interface()
		}
	}
	return out, nil
}

// Lookup returns the value stored under name.
func (v Values) Lookup(name string) (any, bool) {
	if v.m == nil {
		return nil, false
	}
	val, ok := v.m[name]
	return val, ok
}

// Has reports whether a value is stored under name.
func (v Values) Has(name string) bool {
	_, ok := v.Lookup(name)
	return ok
}

// Len returns the number of stored entries.
func (v Values) Len() int { return len(v.m) }

func canonicalKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
