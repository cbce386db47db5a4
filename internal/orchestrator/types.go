package orchestrator

import (
	"strings"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

// HistoryTurn is one prior conversation turn supplied by the caller
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound chat payload
type ChatRequest struct {
	AgentID     string        `json:"agentId"`
	UserMessage string        `json:"userMessage"`
	Address     string        `json:"address,omitempty"`
	History     []HistoryTurn `json:"history,omitempty"`
}

// Validate checks the request for the fields the engine cannot work without
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.UserMessage) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ChatResponse is the assembled terminal payload of one chat request
type ChatResponse struct {
	Content          string                 `json:"content"`
	TransactionData  *chain.TxData          `json:"transactionData,omitempty"`
	Action           string                 `json:"action,omitempty"`
	TargetChainID    int64                  `json:"targetChainId,omitempty"`
	ToolInput        map[string]interface{} `json:"toolInput,omitempty"`
	ToolCallSequence []string               `json:"toolCallSequence,omitempty"`
}

// ToolCallRecord captures one executed tool call inside a request
type ToolCallRecord struct {
	CallID string
	Name   string
	Args   map[string]interface{}
	Result *tools.Result
	Err    error
	// Action mirrors the tool definition's action verb for action and
	// bridge tools
	Action   string
	Category tools.Category
}

// Succeeded reports whether the call produced a usable result
func (r *ToolCallRecord) Succeeded() bool {
	return r.Err == nil && r.Result != nil
}
