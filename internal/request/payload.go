package request

import (
	"encoding/json"
	"fmt"
)

// buildPayload produces the request body, chosen strictly by the resolved
// Content-Type header. Form media types yield a structural name->value
// mapping of the formData parameters (transport-level encoding is the
// dispatcher's job); JSON media types serialize the body parameter's value
// to JSON text; anything else passes the raw body value through.
func buildPayload(params []Parameter, headers map[string]string, values Values) (any, error) {
	contentType := headers["Content-Type"]
	if contentType == "" {
		return nil, nil
	}

	switch classifyMedia(contentType) {
	case mediaForm:
		fields := map[string]any{}
		for _, p := range params {
			if p.In != LocationFormData {
				continue
			}
			value, ok := values.Lookup(p.Name)
			if !ok {
				return nil, &MissingValueError{Parameter: p.Name, In: "formData"}
			}
			fields[p.Name] = value
		}
		if len(fields) == 0 {
			return nil, nil
		}
		return fields, nil

	case mediaJSON:
		body, ok := bodyParameter(params)
		if !ok {
			return nil, nil
		}
		value, supplied := values.Lookup(body.Name)
		if !supplied {
			return nil, &MissingBodyError{Parameter: body.Name}
		}
		text, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("serialize body parameter %q: %w", body.Name, err)
		}
		return string(text), nil

	default:
		body, ok := bodyParameter(params)
		if !ok {
			return nil, nil
		}
		value, supplied := values.Lookup(body.Name)
		if !supplied {
			return nil, &MissingBodyError{Parameter: body.Name}
		}
		return value, nil
	}
}

func bodyParameter(params []Parameter) (Parameter, bool) {
	for _, p := range params {
		if p.In == LocationBody {
			return p, true
		}
	}
	return Parameter{}, false
}
