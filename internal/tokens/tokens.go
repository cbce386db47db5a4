package tokens

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Chain ids the service knows about
const (
	EDUChainID     int64 = 41923
	ArbitrumID     int64 = 42161
	NativeDecimals uint8 = 18
)

// Token describes an ERC20 token (or the native coin) on a specific chain
type Token struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	ChainID  int64          `json:"chainId"`
	Native   bool           `json:"native"`
}

// Registry resolves token symbols to addresses, case-insensitively
type Registry struct {
	mu      sync.RWMutex
	byChain map[int64]map[string]Token
}

// NewRegistry creates a registry seeded with the well-known EDU Chain
// and Arbitrum tokens
func NewRegistry() *Registry {
	r := &Registry{
		byChain: make(map[int64]map[string]Token),
	}

	r.Register(Token{
		Symbol:   "EDU",
		Name:     "EDU",
		Decimals: NativeDecimals,
		ChainID:  EDUChainID,
		Native:   true,
	})
	r.Register(Token{
		Symbol:   "WEDU",
		Name:     "Wrapped EDU",
		Address:  common.HexToAddress("0xd02E8c38a8E3db71f8b2ae30B8186d7874934e12"),
		Decimals: 18,
		ChainID:  EDUChainID,
	})
	r.Register(Token{
		Symbol:   "EDU",
		Name:     "EDU (Arbitrum)",
		Address:  common.HexToAddress("0xf8173a39c56a554837C4C7f104153A005D284D11"),
		Decimals: 18,
		ChainID:  ArbitrumID,
	})

	return r
}

// Register adds or replaces a token entry
func (r *Registry) Register(tok Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chainTokens, ok := r.byChain[tok.ChainID]
	if !ok {
		chainTokens = make(map[string]Token)
		r.byChain[tok.ChainID] = chainTokens
	}
	chainTokens[strings.ToUpper(tok.Symbol)] = tok
}

// ResolveSymbol looks up a token by symbol on the given chain.
// The lookup is case-insensitive.
func (r *Registry) ResolveSymbol(chainID int64, symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chainTokens, ok := r.byChain[chainID]
	if !ok {
		return Token{}, false
	}
	tok, ok := chainTokens[strings.ToUpper(strings.TrimSpace(symbol))]
	return tok, ok
}

// Resolve accepts either a token symbol or a hex address. Addresses pass
// through unchanged; symbols are resolved against the registry.
func (r *Registry) Resolve(chainID int64, symbolOrAddress string) (Token, bool) {
	s := strings.TrimSpace(symbolOrAddress)
	if common.IsHexAddress(s) {
		if tok, ok := r.findByAddress(chainID, common.HexToAddress(s)); ok {
			return tok, true
		}
		return Token{
			Address: common.HexToAddress(s),
			ChainID: chainID,
		}, true
	}
	return r.ResolveSymbol(chainID, s)
}

func (r *Registry) findByAddress(chainID int64, addr common.Address) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tok := range r.byChain[chainID] {
		if tok.Address == addr {
			return tok, true
		}
	}
	return Token{}, false
}

// List returns all tokens registered for a chain
func (r *Registry) List(chainID int64) []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Token, 0, len(r.byChain[chainID]))
	for _, tok := range r.byChain[chainID] {
		out = append(out, tok)
	}
	return out
}

// IsNative reports whether the symbol names the native EDU coin
func IsNative(symbol string) bool {
	return strings.EqualFold(strings.TrimSpace(symbol), "EDU")
}

// OnArbitrum reports whether the address is a known Arbitrum-side token.
// Used to infer the target chain for prepared transactions.
func (r *Registry) OnArbitrum(addr common.Address) bool {
	_, ok := r.findByAddress(ArbitrumID, addr)
	return ok
}
