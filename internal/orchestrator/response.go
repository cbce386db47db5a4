package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lilikoi/lilikoi-go/internal/agents"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

const exhaustionNotice = "I hit my step limit before finishing this request."
const genericFailure = "I'm sorry, I was unable to complete that request. Please try rephrasing it."

// assemble builds the terminal payload from loop state. Transaction data
// is surfaced only when the most recent tool call was a successful
// action, so informational calls never leak a stale descriptor forward.
func (e *Engine) assemble(agent agents.Agent, records []*ToolCallRecord, finalText string, exhausted bool) *ChatResponse {
	response := &ChatResponse{
		Content:          e.content(records, finalText, exhausted),
		ToolCallSequence: callSequence(records),
	}

	last := lastRecord(records)
	if last == nil || last.Category == tools.CategoryInfo || !last.Succeeded() {
		return response
	}
	if last.Result.TransactionData == nil {
		return response
	}

	response.TransactionData = last.Result.TransactionData
	response.Action = last.Name
	response.ToolInput = last.Args
	response.TargetChainID = e.targetChain(agent, last)
	return response
}

// content falls back through oracle text, a synthesized summary of the
// last tool result, and a generic failure message, and is never empty
func (e *Engine) content(records []*ToolCallRecord, finalText string, exhausted bool) string {
	if finalText != "" {
		return finalText
	}

	last := lastRecord(records)
	if exhausted {
		if last != nil && last.Succeeded() {
			return fmt.Sprintf("%s The last tool result was:\n%s", exhaustionNotice, lastResultJSON(last))
		}
		return exhaustionNotice + " Please try a more specific request."
	}

	if last != nil {
		return last.OracleContent()
	}
	return genericFailure
}

// targetChain picks the chain the transaction must be signed on. The
// tool's own answer wins; otherwise known Arbitrum-side token arguments
// route to Arbitrum, bridge agents default to Arbitrum, and everything
// else stays on EDU Chain.
func (e *Engine) targetChain(agent agents.Agent, record *ToolCallRecord) int64 {
	if record.Result.TargetChainID != 0 {
		return record.Result.TargetChainID
	}

	for _, v := range record.Args {
		s, ok := v.(string)
		if !ok || !common.IsHexAddress(s) {
			continue
		}
		if e.tokens.OnArbitrum(common.HexToAddress(s)) {
			return tokens.ArbitrumID
		}
	}

	if agent.Profile == agents.ProfileBridging {
		return tokens.ArbitrumID
	}
	return tokens.EDUChainID
}

func callSequence(records []*ToolCallRecord) []string {
	if len(records) == 0 {
		return nil
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	return names
}

func lastRecord(records []*ToolCallRecord) *ToolCallRecord {
	if len(records) == 0 {
		return nil
	}
	return records[len(records)-1]
}

func lastResultJSON(record *ToolCallRecord) string {
	payload := record.Result.Data
	if payload == nil {
		payload = record.Result.Content
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return record.Result.Content
	}
	return string(raw)
}
