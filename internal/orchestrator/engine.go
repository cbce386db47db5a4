package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/agents"
	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/llm"
	applog "github.com/lilikoi/lilikoi-go/internal/logger"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

const defaultMaxIterations = 5

// Engine drives the bounded tool-calling conversation between the
// caller, the oracle and the tool registry
type Engine struct {
	oracle        llm.Client
	registry      *tools.Registry
	agents        *agents.Resolver
	executor      *Executor
	tokens        *tokens.Registry
	eventBus      *bus.EventBus
	maxIterations int
	logger        *logrus.Logger
}

// NewEngine creates the chat engine
func NewEngine(oracle llm.Client, registry *tools.Registry, agentResolver *agents.Resolver,
	executor *Executor, tokenRegistry *tokens.Registry, eventBus *bus.EventBus,
	cfg config.LLMConfig, logger *logrus.Logger) *Engine {

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	return &Engine{
		oracle:        oracle,
		registry:      registry,
		agents:        agentResolver,
		executor:      executor,
		tokens:        tokenRegistry,
		eventBus:      eventBus,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Chat runs one request through the orchestration loop. Tool failures
// are folded back into the conversation; only oracle transport failures
// and invalid requests return an error.
func (e *Engine) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !e.oracle.IsEnabled() {
		return nil, ErrOracleUnavailable
	}

	requestID := uuid.NewString()
	agent := e.agents.Resolve(req.AgentID)
	catalog := tools.Catalog(agent.Tools(e.registry))
	rlog := applog.NewRequestLogger(e.logger, requestID, agent.ID)

	e.eventBus.PublishAsync(bus.EventChatRequest, map[string]interface{}{
		"requestId": requestID,
		"agentId":   agent.ID,
		"address":   req.Address,
	})
	rlog.Infof("Chat request accepted (%d tools)", len(catalog))

	messages := seedConversation(req)
	var records []*ToolCallRecord

	// Tools offered to the oracle on the current turn. Withheld after a
	// prepared transaction unless the agent auto-progresses.
	available := catalog

	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		completion, err := e.oracle.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: agent.SystemPrompt,
			Messages:     messages,
			Tools:        available,
		})
		if err != nil {
			// Transport failures are fatal to the request; tool
			// failures never reach this path
			return nil, fmt.Errorf("oracle call failed: %w", err)
		}
		e.eventBus.PublishOracleTurn(requestID, iteration, len(completion.ToolCalls))

		if len(completion.ToolCalls) == 0 {
			response := e.assemble(agent, records, completion.Content, false)
			e.publishResponse(requestID, agent.ID, response)
			return response, nil
		}

		messages = append(messages, llm.AssistantMessage(completion.Content, completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			record := e.executor.Execute(ctx, agent, requestID, call, req.Address)
			records = append(records, record)
			messages = append(messages, llm.ToolMessage(call.ID, call.Name, record.OracleContent()))

			// Once a transaction is waiting for the client's signature,
			// further turns run without tools so a second action cannot
			// displace it
			if !agent.AutoProgress && record.Succeeded() && record.Category != tools.CategoryInfo {
				available = nil
			}
		}
	}

	rlog.Warnf("Chat request hit the iteration cap (%d)", e.maxIterations)
	response := e.assemble(agent, records, "", true)
	e.publishResponse(requestID, agent.ID, response)
	return response, nil
}

// seedConversation builds the initial message history from caller
// history plus the new user turn. The wallet address rides along in the
// user turn so the oracle can pass it to tools.
func seedConversation(req *ChatRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		switch turn.Role {
		case openai.ChatMessageRoleUser:
			messages = append(messages, llm.UserMessage(turn.Content))
		case openai.ChatMessageRoleAssistant:
			messages = append(messages, llm.AssistantMessage(turn.Content, nil))
		}
	}

	content := req.UserMessage
	if strings.TrimSpace(req.Address) != "" {
		content = fmt.Sprintf("%s\n\nConnected wallet address: %s", req.UserMessage, req.Address)
	}
	return append(messages, llm.UserMessage(content))
}

func (e *Engine) publishResponse(requestID, agentID string, response *ChatResponse) {
	e.eventBus.PublishChatResponse(requestID, agentID, map[string]interface{}{
		"content":          response.Content,
		"action":           response.Action,
		"targetChainId":    response.TargetChainID,
		"toolCallSequence": response.ToolCallSequence,
		"hasTransaction":   response.TransactionData != nil,
	})
}
