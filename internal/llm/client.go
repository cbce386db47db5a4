package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/config"
)

// Message is one turn of a conversation sent to the model
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
}

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionRequest carries one completion round to the model
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []openai.Tool
}

// CompletionResult is the model's reply for one round
type CompletionResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the completion interface the chat engine talks to
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	IsEnabled() bool
}

// OpenAIClient implements Client on the OpenAI chat completions API
type OpenAIClient struct {
	client *openai.Client
	cfg    config.LLMConfig
	logger *logrus.Logger
}

// NewOpenAIClient creates a client from the LLM configuration. Without
// an API key the client is created disabled so the server can still
// start for local development.
func NewOpenAIClient(cfg config.LLMConfig, logger *logrus.Logger) *OpenAIClient {
	if cfg.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, chat completions will be disabled")
		return &OpenAIClient{cfg: cfg, logger: logger}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}
}

// IsEnabled reports whether completions can be served
func (c *OpenAIClient) IsEnabled() bool {
	return c.client != nil
}

// Complete runs one completion round
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("llm client not enabled")
	}

	if c.cfg.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSec)*time.Second)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, toOpenAIMessage(msg))
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Tools:       req.Tools,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion response")
	}

	choice := resp.Choices[0]
	result := &CompletionResult{Content: choice.Message.Content}
	for _, call := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	c.logger.Debugf("Completion round finished in %s (%d tool calls, %d tokens)",
		time.Since(start), len(result.ToolCalls), resp.Usage.TotalTokens)
	return result, nil
}

func toOpenAIMessage(msg Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:       msg.Role,
		Content:    msg.Content,
		Name:       msg.Name,
		ToolCallID: msg.ToolCallID,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return out
}

// SystemMessage, UserMessage, AssistantMessage and ToolMessage build
// conversation turns with the right role

func SystemMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

func AssistantMessage(content string, toolCalls []ToolCall) Message {
	return Message{Role: openai.ChatMessageRoleAssistant, Content: content, ToolCalls: toolCalls}
}

func ToolMessage(toolCallID, name, content string) Message {
	return Message{Role: openai.ChatMessageRoleTool, Content: content, Name: name, ToolCallID: toolCallID}
}
