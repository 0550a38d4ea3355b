package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyParam(name string) Parameter {
	return Parameter{
		Name: name, In: LocationBody, Required: true,
		Schema: map[string]any{"type": "object"},
	}
}

func TestBuildPayload_JSONBody(t *testing.T) {
	params := []Parameter{bodyParam("pet")}
	headers := map[string]string{"Content-Type": "application/json"}
	values := mustValues(t, map[string]any{"pet": map[string]any{"name": "Fido"}})

	payload, err := buildPayload(params, headers, values)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Fido"}`, payload)
}

func TestBuildPayload_JSONSuffixMedia(t *testing.T) {
	params := []Parameter{bodyParam("pet")}
	headers := map[string]string{"Content-Type": "application/vnd.api+json; charset=utf-8"}
	values := mustValues(t, map[string]any{"pet": map[string]any{"name": "Fido"}})

	payload, err := buildPayload(params, headers, values)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Fido"}`, payload)
}

func TestBuildPayload_MissingBodyValue(t *testing.T) {
	params := []Parameter{bodyParam("pet")}
	headers := map[string]string{"Content-Type": "application/json"}

	_, err := buildPayload(params, headers, mustValues(t, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingBodyParameter)
	assert.Contains(t, err.Error(), `"pet"`)
}

func TestBuildPayload_NoBodyParameterYieldsNil(t *testing.T) {
	headers := map[string]string{"Content-Type": "application/json"}
	payload, err := buildPayload(nil, headers, mustValues(t, nil))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestBuildPayload_FormFields(t *testing.T) {
	params := []Parameter{
		{Name: "name", In: LocationFormData, Required: true},
		{Name: "age", In: LocationFormData, Required: true},
	}
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	values := mustValues(t, map[string]any{"name": "Fido", "age": 3})

	payload, err := buildPayload(params, headers, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Fido", "age": 3}, payload)
}

func TestBuildPayload_MultipartUsesFormFields(t *testing.T) {
	params := []Parameter{
		{Name: "file", In: LocationFormData, Required: true},
	}
	headers := map[string]string{"Content-Type": "multipart/form-data; boundary=xyz"}
	values := mustValues(t, map[string]any{"file": "contents"})

	payload, err := buildPayload(params, headers, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"file": "contents"}, payload)
}

func TestBuildPayload_MissingFormValue(t *testing.T) {
	params := []Parameter{
		{Name: "name", In: LocationFormData, Required: true},
	}
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	_, err := buildPayload(params, headers, mustValues(t, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), "formData")
}

func TestBuildPayload_FormWithoutFieldsYieldsNil(t *testing.T) {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	payload, err := buildPayload(nil, headers, mustValues(t, nil))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestBuildPayload_OtherMediaPassesThrough(t *testing.T) {
	params := []Parameter{bodyParam("document")}
	headers := map[string]string{"Content-Type": "text/plain"}
	values := mustValues(t, map[string]any{"document": "raw text body"})

	payload, err := buildPayload(params, headers, values)
	require.NoError(t, err)
	assert.Equal(t, "raw text body", payload)
}

func TestBuildPayload_NoContentType(t *testing.T) {
	params := []Parameter{bodyParam("pet")}
	payload, err := buildPayload(params, map[string]string{}, mustValues(t, nil))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		in   string
		want mediaCategory
	}{
		{"application/json", mediaJSON},
		{"APPLICATION/JSON; charset=utf-8", mediaJSON},
		{"application/vnd.api+json", mediaJSON},
		{"text/vnd.custom+json", mediaJSON},
		{"application/x-www-form-urlencoded", mediaForm},
		{"multipart/form-data; boundary=abc", mediaForm},
		{"text/plain", mediaOther},
		{"application/xml", mediaOther},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classifyMedia(tc.in), "content type %q", tc.in)
	}
}
