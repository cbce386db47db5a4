package tools

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	defs := []Definition{
		{
			Name:        "get_swap_quote",
			Description: "Quote a swap.",
			Category:    CategoryInfo,
			Params: []ParamSpec{
				{Name: "token_in", Type: "token", Description: "Input token.", Required: true, Token: true},
				{Name: "amount", Type: "amount", Description: "Input amount.", Required: true},
				{Name: "wallet_address", Type: "address", Description: "Caller wallet.", Required: true, Address: true, Injected: true},
				{Name: "mode", Type: "string", Description: "Quote mode.", Enum: []string{"exact_in", "exact_out"}},
			},
		},
	}

	catalog := Catalog(defs)
	require.Len(t, catalog, 1)

	tool := catalog[0]
	assert.Equal(t, openai.ToolTypeFunction, tool.Type)
	require.NotNil(t, tool.Function)
	assert.Equal(t, "get_swap_quote", tool.Function.Name)

	params, ok := tool.Function.Parameters.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])

	properties, ok := params["properties"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, properties, 4)

	tokenIn, ok := properties["token_in"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", tokenIn["type"])
	assert.Equal(t, "Input token.", tokenIn["description"])

	mode, ok := properties["mode"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{"exact_in", "exact_out"}, mode["enum"])

	// Injected parameters are filled server-side and must not be
	// demanded from the model
	required, ok := params["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"token_in", "amount"}, required)
}

func TestSchemaType(t *testing.T) {
	cases := map[string]string{
		"":        "string",
		"address": "string",
		"token":   "string",
		"amount":  "string",
		"number":  "number",
		"boolean": "boolean",
		"custom":  "string",
	}
	for in, want := range cases {
		assert.Equal(t, want, schemaType(in), "schemaType(%q)", in)
	}
}
