package agent

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genai"
)

// FunctionDeclarations translates the server's tool catalog into the
// function declarations the model consumes. Only the flat object shape
// the tools actually use is translated; unrecognized property types
// degrade to string rather than dropping the property.
func FunctionDeclarations(tools []*mcp.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}

		if tool.InputSchema != nil && len(tool.InputSchema.Properties) > 0 {
			params := &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
				Required:   tool.InputSchema.Required,
			}

			for name, prop := range tool.InputSchema.Properties {
				params.Properties[name] = &genai.Schema{
					Type:        schemaType(prop.Type),
					Description: prop.Description,
				}
			}

			decl.Parameters = params
		}

		decls = append(decls, decl)
	}

	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
