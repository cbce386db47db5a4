package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

const testCaller = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"

func swapDefinition() tools.Definition {
	return tools.Definition{
		Name:    "swap_tokens",
		ChainID: tokens.EDUChainID,
		Params: []tools.ParamSpec{
			{Name: "token_in", Type: "token", Required: true, Token: true},
			{Name: "amount", Type: "amount", Required: true},
			{Name: "recipient", Type: "address", Required: true, Address: true, Injected: true},
			{Name: "memo", Type: "string", Required: false},
		},
	}
}

func TestResolveTokenSymbolCaseInsensitive(t *testing.T) {
	resolver := NewArgumentResolver(tokens.NewRegistry())
	def := swapDefinition()
	wedu := "0xd02E8c38a8E3db71f8b2ae30B8186d7874934e12"

	for _, symbol := range []string{"wedu", "WEDU", "Wedu", " wedu "} {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": symbol,
			"amount":   "1",
		}, testCaller)
		require.NoError(t, err, "symbol %q", symbol)
		assert.Equal(t, wedu, resolved["token_in"])
	}
}

func TestResolveTokenArguments(t *testing.T) {
	resolver := NewArgumentResolver(tokens.NewRegistry())
	def := swapDefinition()

	t.Run("address passes through checksummed", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "0xd02e8c38a8e3db71f8b2ae30b8186d7874934e12",
			"amount":   "1",
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "0xd02E8c38a8E3db71f8b2ae30B8186d7874934e12", resolved["token_in"])
	})

	t.Run("native coin stays symbolic", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "edu",
			"amount":   "1",
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "EDU", resolved["token_in"])
	})

	t.Run("unknown symbol lists known ones", func(t *testing.T) {
		_, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "DOGE",
			"amount":   "1",
		}, testCaller)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unresolvable token identifier")
		assert.Contains(t, err.Error(), "WEDU")
	})
}

func TestResolveInjection(t *testing.T) {
	resolver := NewArgumentResolver(tokens.NewRegistry())
	def := swapDefinition()

	t.Run("missing recipient filled from caller", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   "1",
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, testCaller, resolved["recipient"])
	})

	t.Run("empty recipient filled from caller", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in":  "WEDU",
			"amount":    "1",
			"recipient": "  ",
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, testCaller, resolved["recipient"])
	})

	t.Run("explicit recipient wins", func(t *testing.T) {
		other := "0x1111111111111111111111111111111111111111"
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in":  "WEDU",
			"amount":    "1",
			"recipient": other,
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, other, resolved["recipient"])
	})

	t.Run("no caller and no recipient fails required check", func(t *testing.T) {
		_, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   "1",
		}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing required parameter "recipient"`)
	})
}

func TestResolveValidation(t *testing.T) {
	resolver := NewArgumentResolver(tokens.NewRegistry())
	def := swapDefinition()

	t.Run("missing required parameter", func(t *testing.T) {
		_, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
		}, testCaller)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing required parameter "amount"`)
	})

	t.Run("malformed address rejected", func(t *testing.T) {
		_, err := resolver.Resolve(def, map[string]interface{}{
			"token_in":  "WEDU",
			"amount":    "1",
			"recipient": "not-an-address",
		}, testCaller)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid address")
	})

	t.Run("optional empty parameter dropped", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   "1",
			"memo":     "",
		}, testCaller)
		require.NoError(t, err)
		_, present := resolved["memo"]
		assert.False(t, present)
	})

	t.Run("numeric amount accepted", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   1.5,
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "1.5", resolved["amount"])
	})

	t.Run("numeric amount keeps full precision", func(t *testing.T) {
		resolved, err := resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   1e-7,
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "0.0000001", resolved["amount"])

		resolved, err = resolver.Resolve(def, map[string]interface{}{
			"token_in": "WEDU",
			"amount":   1e21,
		}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "1000000000000000000000", resolved["amount"])
	})

	t.Run("enum enforced", func(t *testing.T) {
		enumDef := tools.Definition{
			Name: "bridge_op",
			Params: []tools.ParamSpec{
				{Name: "action", Type: "string", Required: true, Enum: []string{"deposit", "withdraw"}},
			},
		}
		_, err := resolver.Resolve(enumDef, map[string]interface{}{"action": "teleport"}, testCaller)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be one of")

		resolved, err := resolver.Resolve(enumDef, map[string]interface{}{"action": "deposit"}, testCaller)
		require.NoError(t, err)
		assert.Equal(t, "deposit", resolved["action"])
	})
}
