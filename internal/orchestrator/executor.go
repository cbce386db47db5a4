package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/agents"
	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/llm"
	applog "github.com/lilikoi/lilikoi-go/internal/logger"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

// Executor runs oracle-requested tool calls. Every failure is contained
// into the returned record so the loop can feed it back to the oracle as
// a tool-result turn instead of crashing the request.
type Executor struct {
	registry *tools.Registry
	resolver *ArgumentResolver
	eventBus *bus.EventBus
	logger   *logrus.Logger
}

// NewExecutor creates a tool executor
func NewExecutor(registry *tools.Registry, resolver *ArgumentResolver, eventBus *bus.EventBus, logger *logrus.Logger) *Executor {
	return &Executor{
		registry: registry,
		resolver: resolver,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Execute runs one tool call for an agent and returns its record. The
// record's Err is set for permission, resolution, execution and
// descriptor-validation failures alike.
func (e *Executor) Execute(ctx context.Context, agent agents.Agent, requestID string, call llm.ToolCall, callerAddress string) *ToolCallRecord {
	record := &ToolCallRecord{CallID: call.ID, Name: call.Name}
	rlog := applog.NewRequestLogger(e.logger, requestID, agent.ID)

	tool, ok := e.registry.Get(call.Name)
	if !ok {
		record.Err = fmt.Errorf("unknown tool: %s", call.Name)
		rlog.Warnf("%v", record.Err)
		return record
	}
	record.Action = tool.Definition.Action
	record.Category = tool.Definition.Category

	if !permitted(agent, call.Name) {
		record.Err = fmt.Errorf("tool %s is not permitted for agent %s", call.Name, agent.ID)
		rlog.Warnf("%v", record.Err)
		return record
	}

	args := make(map[string]interface{})
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			record.Err = fmt.Errorf("tool %s: malformed arguments: %w", call.Name, err)
			rlog.Warnf("%v", record.Err)
			return record
		}
	}

	resolved, err := e.resolver.Resolve(tool.Definition, args, callerAddress)
	if err != nil {
		record.Err = err
		rlog.Warnf("Tool %s: %v", call.Name, err)
		return record
	}
	record.Args = resolved

	e.eventBus.PublishToolCall(requestID, agent.ID, call.Name, resolved)

	result, err := e.registry.Execute(ctx, call.Name, resolved)
	if err != nil {
		record.Err = fmt.Errorf("tool %s failed: %w", call.Name, err)
		rlog.Warnf("%v", record.Err)
		e.eventBus.PublishToolResult(requestID, call.Name, false, record.Err.Error())
		return record
	}

	if err := validateResult(tool.Definition, result); err != nil {
		record.Err = fmt.Errorf("tool %s returned an invalid result: %w", call.Name, err)
		rlog.Warnf("%v", record.Err)
		e.eventBus.PublishToolResult(requestID, call.Name, false, record.Err.Error())
		return record
	}

	record.Result = result
	rlog.Debugf("Tool %s completed", call.Name)
	e.eventBus.PublishToolResult(requestID, call.Name, true, result.Content)
	return record
}

// OracleContent renders the record as the text fed back to the oracle.
// Errors become readable tool-result turns so the oracle can adapt.
func (r *ToolCallRecord) OracleContent() string {
	if r.Err != nil {
		return fmt.Sprintf("Error: %v", r.Err)
	}
	if r.Result.Content != "" {
		return r.Result.Content
	}
	if r.Result.Data != nil {
		if raw, err := json.Marshal(r.Result.Data); err == nil {
			return string(raw)
		}
	}
	return "(no result)"
}

// validateResult enforces the category contract: info tools never return
// transaction data, action tools must return a well-formed descriptor
func validateResult(def tools.Definition, result *tools.Result) error {
	if result == nil {
		return fmt.Errorf("nil result")
	}

	switch def.Category {
	case tools.CategoryInfo:
		if result.TransactionData != nil {
			return fmt.Errorf("info tool returned transaction data")
		}
	case tools.CategoryAction, tools.CategoryBridge:
		tx := result.TransactionData
		if tx == nil {
			return fmt.Errorf("missing transaction data")
		}
		if !common.IsHexAddress(tx.To) {
			return fmt.Errorf("transaction destination %q is not a valid address", tx.To)
		}
		if tx.Data == "" {
			return fmt.Errorf("transaction calldata is empty")
		}
	}
	return nil
}

func permitted(agent agents.Agent, toolName string) bool {
	if len(agent.ToolNames) == 0 {
		return true
	}
	for _, name := range agent.ToolNames {
		if name == toolName {
			return true
		}
	}
	return false
}
