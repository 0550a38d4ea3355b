package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oaswire/oaswire/internal/spec"
)

func parseDoc(t *testing.T, src string) spec.Document {
	t.Helper()
	var doc spec.Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return doc
}

const resolverDoc = `
openapi: 3.0.0
components:
  parameters:
    limitParam:
      name: limit
      in: query
      required: false
      schema:
        type: integer
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
    PetList:
      type: array
      items:
        $ref: '#/components/schemas/Pet'
    SelfA:
      $ref: '#/components/schemas/SelfB'
    SelfB:
      $ref: '#/components/schemas/SelfA'
`

func TestResolve_ParameterRef(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{"$ref": "#/components/parameters/limitParam"}

	resolved, err := Resolve(doc, fragment)
	require.NoError(t, err)

	m, ok := resolved.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "limit", m["name"])
	assert.Equal(t, "query", m["in"])

	// input fragment stays untouched
	assert.Equal(t, map[string]any{"$ref": "#/components/parameters/limitParam"}, fragment)
}

func TestResolve_SchemaKeyedRefMergesIntoSchema(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{
		"name": "pet",
		"in":   "body",
		"schema": map[string]any{
			"$ref": "#/components/schemas/Pet",
		},
	}

	resolved, err := Resolve(doc, fragment)
	require.NoError(t, err)

	m := resolved.(map[string]any)
	schema, ok := m["schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema, "properties")
}

func TestResolve_NestedRefsResolveRecursively(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{"$ref": "#/components/schemas/PetList"}

	resolved, err := Resolve(doc, fragment)
	require.NoError(t, err)

	m := resolved.(map[string]any)
	items, ok := m["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", items["type"])
	assert.NotContains(t, items, "$ref")
}

func TestResolve_Idempotent(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{"$ref": "#/components/schemas/PetList"}

	first, err := Resolve(doc, fragment)
	require.NoError(t, err)
	second, err := Resolve(doc, first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_SiblingKeysSurvive(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{
		"$ref":        "#/components/schemas/Pet",
		"description": "a pet",
	}

	resolved, err := Resolve(doc, fragment)
	require.NoError(t, err)

	m := resolved.(map[string]any)
	assert.Equal(t, "a pet", m["description"])
	assert.Equal(t, "object", m["type"])
}

func TestResolve_ExternalURIPointer(t *testing.T) {
	doc := parseDoc(t, resolverDoc)
	fragment := map[string]any{"$ref": "https://example.com/api.yaml#/components/schemas/Pet"}

	resolved, err := Resolve(doc, fragment)
	require.NoError(t, err)
	assert.Equal(t, "object", resolved.(map[string]any)["type"])
}

func TestResolve_Errors(t *testing.T) {
	doc := parseDoc(t, resolverDoc)

	tests := []struct {
		name string
		ref  string
		want error
	}{
		{"not a pointer", "not-a-ref", ErrInvalidReference},
		{"disallowed section", "#/components/whatever/Pet", ErrInvalidReference},
		{"outside components", "#/paths/~1pets/get", ErrInvalidReference},
		{"malformed uri prefix", "://bad#/components/schemas/Pet", ErrInvalidReference},
		{"unknown name", "#/components/schemas/Missing", ErrUnresolvableReference},
		{"unknown section content", "#/components/links/Nothing", ErrUnresolvableReference},
		{"cycle", "#/components/schemas/SelfA", ErrReferenceCycle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(doc, map[string]any{"$ref": tc.ref})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), tc.ref)
		})
	}
}
