package tools

import (
	"github.com/sashabaranov/go-openai"
)

// Catalog converts tool definitions into the OpenAI function-calling
// format so the model can request them
func Catalog(defs []Definition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: functionDefinition(def),
		})
	}
	return out
}

func functionDefinition(def Definition) *openai.FunctionDefinition {
	properties := make(map[string]interface{}, len(def.Params))
	required := make([]string, 0, len(def.Params))

	for _, param := range def.Params {
		prop := map[string]interface{}{
			"type":        schemaType(param.Type),
			"description": param.Description,
		}
		if len(param.Enum) > 0 {
			prop["enum"] = param.Enum
		}
		properties[param.Name] = prop

		// Injected parameters are filled server-side, so the model is
		// not required to provide them
		if param.Required && !param.Injected {
			required = append(required, param.Name)
		}
	}

	return &openai.FunctionDefinition{
		Name:        def.Name,
		Description: def.Description,
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

func schemaType(t string) string {
	switch t {
	case "", "string", "address", "token", "amount":
		return "string"
	case "number", "integer", "boolean", "array", "object":
		return t
	default:
		return "string"
	}
}
