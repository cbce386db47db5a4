package tools

import (
	"context"

	"github.com/lilikoi/lilikoi-go/internal/chain"
)

// Category classifies a tool by its effect
type Category string

const (
	// CategoryInfo tools only read state and never produce transaction data
	CategoryInfo Category = "info"
	// CategoryAction tools prepare on-chain transactions for client signing
	CategoryAction Category = "action"
	// CategoryBridge tools prepare bridge transactions between chains
	CategoryBridge Category = "bridge"
)

// ParamSpec describes a single tool parameter
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool
	// Address marks parameters that must be valid hex addresses
	Address bool
	// Token marks parameters that accept token symbols or addresses;
	// symbols are resolved before the handler runs
	Token bool
	// Injected parameters are filled with the caller's wallet address
	// when the model omits them
	Injected bool
	Enum     []string
}

// Definition describes a tool exposed to the model
type Definition struct {
	Name        string
	Description string
	Category    Category
	// Action is the short verb surfaced in responses for action and
	// bridge tools, e.g. "swap" or "deposit"
	Action string
	// ChainID is the chain token symbols resolve against
	ChainID int64
	Params  []ParamSpec
}

// Result is the outcome of a tool execution
type Result struct {
	// Content is the text fed back to the model as the tool result
	Content string
	// Data is an optional structured payload; when Content is empty it
	// is serialized in its place
	Data interface{}
	// TransactionData carries a prepared unsigned transaction for
	// action and bridge tools
	TransactionData *chain.TxData
	// TargetChainID is the chain the prepared transaction must be
	// signed on
	TargetChainID int64
}

// Handler executes a tool with resolved arguments
type Handler func(ctx context.Context, args map[string]interface{}) (*Result, error)
