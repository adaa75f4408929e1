package agent

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFunctionDeclarations(t *testing.T) {
	tools := []*mcp.Tool{
		{
			Name:        "search_drive_files",
			Description: "Search for files in Google Drive.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query": {Type: "string", Description: "search query"},
					"limit": {Type: "integer"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "check_authentication_status",
			Description: "Check authentication status.",
			InputSchema: &jsonschema.Schema{Type: "object"},
		},
	}

	decls := FunctionDeclarations(tools)
	require.Len(t, decls, 2)

	search := decls[0]
	assert.Equal(t, "search_drive_files", search.Name)
	assert.Equal(t, "Search for files in Google Drive.", search.Description)
	require.NotNil(t, search.Parameters)
	assert.Equal(t, genai.TypeObject, search.Parameters.Type)
	assert.Equal(t, []string{"query"}, search.Parameters.Required)

	query := search.Parameters.Properties["query"]
	require.NotNil(t, query)
	assert.Equal(t, genai.TypeString, query.Type)
	assert.Equal(t, "search query", query.Description)

	limit := search.Parameters.Properties["limit"]
	require.NotNil(t, limit)
	assert.Equal(t, genai.TypeInteger, limit.Type)

	status := decls[1]
	assert.Equal(t, "check_authentication_status", status.Name)
	assert.Nil(t, status.Parameters, "tools without properties declare no parameters")
}

func TestFunctionDeclarations_NilSchema(t *testing.T) {
	decls := FunctionDeclarations([]*mcp.Tool{{Name: "bare"}})
	require.Len(t, decls, 1)
	assert.Nil(t, decls[0].Parameters)
}

func TestSchemaType(t *testing.T) {
	assert.Equal(t, genai.TypeString, schemaType("string"))
	assert.Equal(t, genai.TypeNumber, schemaType("number"))
	assert.Equal(t, genai.TypeInteger, schemaType("integer"))
	assert.Equal(t, genai.TypeBoolean, schemaType("boolean"))
	assert.Equal(t, genai.TypeArray, schemaType("array"))
	assert.Equal(t, genai.TypeObject, schemaType("object"))
	assert.Equal(t, genai.TypeString, schemaType("anyOf"), "unknown types degrade to string")
}
