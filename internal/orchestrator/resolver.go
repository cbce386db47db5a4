package orchestrator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

// ArgumentResolver canonicalizes oracle-supplied tool arguments:
// injected defaults, required-field validation, symbol resolution and
// address well-formedness. Every handler receives complete, canonical
// arguments.
type ArgumentResolver struct {
	tokens *tokens.Registry
}

// NewArgumentResolver creates a resolver over the token registry
func NewArgumentResolver(registry *tokens.Registry) *ArgumentResolver {
	return &ArgumentResolver{tokens: registry}
}

// Resolve returns a new argument map with defaults injected, symbols
// resolved to addresses and all schema constraints checked
func (r *ArgumentResolver) Resolve(def tools.Definition, args map[string]interface{}, callerAddress string) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(args))
	for k, v := range args {
		resolved[k] = v
	}

	for _, param := range def.Params {
		raw, present := stringValue(resolved, param.Name)

		// Default injection happens before validation so an omitted
		// wallet parameter is filled rather than rejected
		if param.Injected && raw == "" && callerAddress != "" {
			raw = callerAddress
			resolved[param.Name] = callerAddress
			present = true
		}

		if raw == "" {
			if param.Required {
				return nil, fmt.Errorf("tool %s: missing required parameter %q", def.Name, param.Name)
			}
			if present {
				delete(resolved, param.Name)
			}
			continue
		}
		resolved[param.Name] = raw

		if param.Token {
			value, err := r.resolveTokenIdentifier(def.ChainID, raw, param.Name)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", def.Name, err)
			}
			resolved[param.Name] = value
			raw = value
		}

		if param.Address && !tokens.IsNative(raw) && !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("tool %s: parameter %q is not a valid address: %q", def.Name, param.Name, raw)
		}

		if len(param.Enum) > 0 && !contains(param.Enum, raw) {
			return nil, fmt.Errorf("tool %s: parameter %q must be one of %s, got %q",
				def.Name, param.Name, strings.Join(param.Enum, ", "), raw)
		}
	}

	return resolved, nil
}

// resolveTokenIdentifier maps a symbol to its address on the tool's
// chain. Hex addresses pass through unchanged and the native coin stays
// symbolic so handlers can route it through wrapping.
func (r *ArgumentResolver) resolveTokenIdentifier(chainID int64, value, paramName string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if tokens.IsNative(trimmed) {
		return "EDU", nil
	}
	if common.IsHexAddress(trimmed) {
		return common.HexToAddress(trimmed).Hex(), nil
	}
	if chainID == 0 {
		chainID = tokens.EDUChainID
	}

	tok, ok := r.tokens.ResolveSymbol(chainID, trimmed)
	if !ok {
		return "", fmt.Errorf("unresolvable token identifier %q for parameter %q (known symbols: %s)",
			value, paramName, strings.Join(r.knownSymbols(chainID), ", "))
	}
	return tok.Address.Hex(), nil
}

func (r *ArgumentResolver) knownSymbols(chainID int64) []string {
	list := r.tokens.List(chainID)
	symbols := make([]string, 0, len(list))
	for _, tok := range list {
		symbols = append(symbols, tok.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func stringValue(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		// The oracle occasionally sends numeric amounts as JSON numbers
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
