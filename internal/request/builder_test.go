package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaswire/oaswire/internal/spec"
)

const petstoreDoc = `
openapi: 3.0.0
info:
  title: Petstore
  version: "1.0"
servers:
  - url: /v1
security:
  - api_key: []
paths:
  /pets/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
    get:
      operationId: getPet
      parameters:
        - name: fields
          in: query
          style: pipeDelimited
          explode: false
          schema:
            type: array
      responses:
        '200':
          content:
            application/json: {}
  /pets:
    post:
      operationId: createPet
      parameters:
        - name: pet
          in: body
          required: true
          schema:
            $ref: '#/components/schemas/Pet'
      requestBody:
        content:
          application/json: {}
      responses:
        '201':
          content:
            application/json: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
  securitySchemes:
    api_key:
      type: apiKey
      name: X-Api-Key
      in: header
`

func TestBuild_GetWithPathQueryAndSecurity(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "GET /pets/{id}")
	require.True(t, ok)

	req, err := Build(doc, op,
		map[string]any{"id": 42, "fields": []any{"name", "age"}},
		map[string]any{"X-Api-Key": "secret"},
	)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Verb)
	assert.Equal(t, "/v1/pets/42?fields=name|age", req.Path)
	assert.Equal(t, "secret", req.Headers["X-Api-Key"])
	assert.Equal(t, "application/json", req.Headers["Accept"])
	assert.Nil(t, req.Payload)
}

func TestBuild_PostWithJSONBody(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "POST /pets")
	require.True(t, ok)

	req, err := Build(doc, op,
		map[string]any{"pet": map[string]any{"name": "Fido"}},
		map[string]any{"X-Api-Key": "secret"},
	)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Verb)
	assert.Equal(t, "/v1/pets", req.Path)
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Equal(t, `{"name":"Fido"}`, req.Payload)
}

func TestBuild_MissingSecurityHeader(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "GET /pets/{id}")
	require.True(t, ok)

	_, err := Build(doc, op, map[string]any{"id": 42}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), `"X-Api-Key"`)
}

func TestBuild_MissingBody(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "POST /pets")
	require.True(t, ok)

	_, err := Build(doc, op, nil, map[string]any{"X-Api-Key": "secret"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingBodyParameter)
}

func TestBuild_RejectsNonMappingArguments(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "GET /pets/{id}")
	require.True(t, ok)

	_, err := Build(doc, op, "id=42", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Build(doc, op, map[string]any{"id": 42}, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuild_UntypedYAMLKeys(t *testing.T) {
	doc := parseDoc(t, petstoreDoc)
	op, ok := spec.FindOperation(doc, "GET /pets/{id}")
	require.True(t, ok)

	req, err := Build(doc, op,
		map[any]any{"id": 42},
		map[any]any{"X-Api-Key": "secret"},
	)
	require.NoError(t, err)
	assert.Equal(t, "/v1/pets/42", req.Path)
}
