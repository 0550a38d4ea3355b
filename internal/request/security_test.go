package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaswire/oaswire/internal/spec"
)

const securityDoc = `
openapi: 3.0.0
security:
  - basic_auth: []
components:
  securitySchemes:
    api_key:
      type: apiKey
      name: X-Api-Key
      in: header
    api_key_query:
      type: apiKey
      name: token
      in: query
    basic_auth:
      type: http
      scheme: basic
    bearer:
      type: http
      scheme: bearer
`

func secOp(requirements ...any) *spec.Operation {
	return &spec.Operation{
		Verb:        "get",
		Path:        "/pets",
		Security:    requirements,
		HasSecurity: requirements != nil,
	}
}

func TestDeriveSecurity_SingleAPIKey(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(map[string]any{"api_key": []any{}})

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 1)

	param := derived[0].(map[string]any)
	assert.Equal(t, "X-Api-Key", param["name"])
	assert.Equal(t, "header", param["in"])
	assert.Equal(t, true, param["required"])
}

func TestDeriveSecurity_APIKeyInQuery(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(map[string]any{"api_key_query": []any{}})

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 1)

	param := derived[0].(map[string]any)
	assert.Equal(t, "token", param["name"])
	assert.Equal(t, "query", param["in"])
}

func TestDeriveSecurity_NonAPIKeyMapsToAuthorization(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(map[string]any{"bearer": []any{}})

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 1)

	param := derived[0].(map[string]any)
	assert.Equal(t, "Authorization", param["name"])
	assert.Equal(t, "header", param["in"])
	assert.Equal(t, true, param["required"])
}

func TestDeriveSecurity_AlternativesAreOptional(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(
		map[string]any{"api_key": []any{}},
		map[string]any{"bearer": []any{}},
	)

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 2)
	for _, raw := range derived {
		param := raw.(map[string]any)
		assert.Equal(t, false, param["required"], "scheme alternatives must not be required")
	}
}

func TestDeriveSecurity_CombinedSchemesAreOptional(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(map[string]any{"api_key": []any{}, "basic_auth": []any{}})

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 2)
	for _, raw := range derived {
		param := raw.(map[string]any)
		assert.Equal(t, false, param["required"])
	}
}

func TestDeriveSecurity_FallsBackToDocumentRequirements(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := &spec.Operation{Verb: "get", Path: "/pets"}

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	assert.Equal(t, "Authorization", derived[0].(map[string]any)["name"])
}

func TestDeriveSecurity_EmptyOperationRequirementsDisableSecurity(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := &spec.Operation{Verb: "get", Path: "/pets", Security: []any{}, HasSecurity: true}

	derived, err := deriveSecurityParameters(doc, op)
	require.NoError(t, err)
	assert.Empty(t, derived)
}

func TestDeriveSecurity_UnknownScheme(t *testing.T) {
	doc := parseDoc(t, securityDoc)
	op := secOp(map[string]any{"missing": []any{}})

	_, err := deriveSecurityParameters(doc, op)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableReference)
	assert.Contains(t, err.Error(), "missing")
}
