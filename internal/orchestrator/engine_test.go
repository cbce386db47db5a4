package orchestrator

import (
	"context"
	"errors"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilikoi/lilikoi-go/internal/agents"
	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/llm"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

// mockOracle replays a scripted sequence of completions
type mockOracle struct {
	responses []*llm.CompletionResult
	err       error
	calls     int
	requests  []llm.CompletionRequest
}

func (m *mockOracle) IsEnabled() bool { return true }

func (m *mockOracle) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llm.CompletionResult{Content: "done"}, nil
	}
	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return next, nil
}

type disabledOracle struct{}

func (disabledOracle) IsEnabled() bool { return false }
func (disabledOracle) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResult, error) {
	return nil, errors.New("disabled")
}

func toolCallResponse(calls ...llm.ToolCall) *llm.CompletionResult {
	return &llm.CompletionResult{ToolCalls: calls}
}

func textResponse(text string) *llm.CompletionResult {
	return &llm.CompletionResult{Content: text}
}

const swapTxData = "0xac9650d8deadbeef"

func testEngine(t *testing.T, oracle llm.Client) (*Engine, *bus.EventBus) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	registry := tools.NewRegistry(logger)

	require.NoError(t, registry.Register(tools.Definition{
		Name:     "get_swap_quote",
		Category: tools.CategoryInfo,
		ChainID:  tokens.EDUChainID,
		Params: []tools.ParamSpec{
			{Name: "token_in", Type: "token", Required: true, Token: true},
			{Name: "token_out", Type: "token", Required: true, Token: true},
			{Name: "amount", Type: "amount", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*tools.Result, error) {
		return &tools.Result{
			Content: "0.1 EDU buys about 42 USDC",
			Data:    map[string]interface{}{"amountOut": "42000000"},
		}, nil
	}))

	require.NoError(t, registry.Register(tools.Definition{
		Name:     "swap_edu_for_tokens",
		Category: tools.CategoryAction,
		Action:   "swap",
		ChainID:  tokens.EDUChainID,
		Params: []tools.ParamSpec{
			{Name: "token_out", Type: "token", Required: true, Token: true},
			{Name: "amount", Type: "amount", Required: true},
			{Name: "recipient", Type: "address", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*tools.Result, error) {
		return &tools.Result{
			Content: "Prepared the swap.",
			TransactionData: &chain.TxData{
				To:      "0x1a1e967e523435CeF20642e3D7811F7d0da9a704",
				Data:    swapTxData,
				Value:   "100000000000000000",
				ChainID: tokens.EDUChainID,
			},
			TargetChainID: tokens.EDUChainID,
		}, nil
	}))

	require.NoError(t, registry.Register(tools.Definition{
		Name:     "broken_tool",
		Category: tools.CategoryInfo,
	}, func(ctx context.Context, args map[string]interface{}) (*tools.Result, error) {
		return nil, errors.New("upstream rpc down")
	}))

	require.NoError(t, registry.Register(tools.Definition{
		Name:     "lame_action",
		Category: tools.CategoryAction,
		Action:   "send",
	}, func(ctx context.Context, args map[string]interface{}) (*tools.Result, error) {
		return &tools.Result{Content: "forgot the descriptor"}, nil
	}))

	agentsCfg := config.DefaultConfig().Agents
	agentsCfg["pilot"] = config.AgentProfileConfig{Profile: "dex", AutoProgress: true}
	agentResolver, err := agents.NewResolver(agentsCfg, logger)
	require.NoError(t, err)

	eventBus := bus.NewEventBus(logger)
	t.Cleanup(eventBus.Stop)

	tokenRegistry := tokens.NewRegistry()
	tokenRegistry.Register(tokens.Token{
		Symbol:   "USDC",
		Name:     "USD Coin",
		Address:  ethcommon.HexToAddress("0x2222222222222222222222222222222222222222"),
		Decimals: 6,
		ChainID:  tokens.EDUChainID,
	})

	executor := NewExecutor(registry, NewArgumentResolver(tokenRegistry), eventBus, logger)
	engine := NewEngine(oracle, registry, agentResolver, executor, tokenRegistry, eventBus,
		config.LLMConfig{MaxIterations: 5}, logger)
	return engine, eventBus
}

func TestChatTextOnlyResponse(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		textResponse("EDU Chain is an L3 focused on education."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "what is EDU Chain?",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, oracle.calls)
	assert.Equal(t, "EDU Chain is an L3 focused on education.", resp.Content)
	assert.Nil(t, resp.TransactionData)
	assert.Empty(t, resp.Action)
	assert.Empty(t, resp.ToolCallSequence)
}

func TestChatSwapScenario(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_1", Name: "get_swap_quote",
			Arguments: `{"token_in":"EDU","token_out":"USDC","amount":"0.1"}`,
		}),
		toolCallResponse(llm.ToolCall{
			ID: "call_2", Name: "swap_edu_for_tokens",
			Arguments: `{"token_out":"USDC","amount":"0.1"}`,
		}),
		textResponse("Here is your swap, sign it in your wallet."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "dex",
		UserMessage: "swap 0.1 EDU for USDC",
		Address:     testCaller,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, oracle.calls)
	assert.Equal(t, "Here is your swap, sign it in your wallet.", resp.Content)
	assert.Equal(t, []string{"get_swap_quote", "swap_edu_for_tokens"}, resp.ToolCallSequence)
	assert.Equal(t, "swap_edu_for_tokens", resp.Action)
	require.NotNil(t, resp.TransactionData)
	assert.Equal(t, swapTxData, resp.TransactionData.Data)
	assert.Equal(t, tokens.EDUChainID, resp.TargetChainID)
	assert.Equal(t, testCaller, resp.ToolInput["recipient"], "caller address should be injected")

	// The conversation fed to the oracle grows by one assistant turn and
	// one tool turn per call
	require.Len(t, oracle.requests, 3)
	assert.Len(t, oracle.requests[0].Messages, 1)
	assert.Len(t, oracle.requests[1].Messages, 3)
	assert.Len(t, oracle.requests[2].Messages, 5)
	assert.Contains(t, oracle.requests[0].Messages[0].Content, testCaller)
}

func TestChatToolsWithheldAfterPreparedTransaction(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_1", Name: "swap_edu_for_tokens",
			Arguments: `{"token_out":"USDC","amount":"0.1"}`,
		}),
		textResponse("Sign the swap in your wallet."),
	}}
	engine, _ := testEngine(t, oracle)

	_, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "dex",
		UserMessage: "swap 0.1 EDU for USDC",
		Address:     testCaller,
	})
	require.NoError(t, err)

	require.Len(t, oracle.requests, 2)
	assert.NotEmpty(t, oracle.requests[0].Tools)
	assert.Empty(t, oracle.requests[1].Tools,
		"once a transaction awaits signature the oracle gets no further tools")
}

func TestChatAutoProgressKeepsTools(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_1", Name: "swap_edu_for_tokens",
			Arguments: `{"token_out":"USDC","amount":"0.1"}`,
		}),
		textResponse("Swap prepared, moving on."),
	}}
	engine, _ := testEngine(t, oracle)

	_, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "pilot",
		UserMessage: "swap 0.1 EDU for USDC",
		Address:     testCaller,
	})
	require.NoError(t, err)

	require.Len(t, oracle.requests, 2)
	assert.NotEmpty(t, oracle.requests[1].Tools)
}

func TestChatNoStaleTransactionData(t *testing.T) {
	// An action tool followed by an info tool must not leak the action's
	// descriptor into the final payload
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_1", Name: "swap_edu_for_tokens",
			Arguments: `{"token_out":"USDC","amount":"0.1"}`,
		}),
		toolCallResponse(llm.ToolCall{
			ID: "call_2", Name: "get_swap_quote",
			Arguments: `{"token_in":"EDU","token_out":"USDC","amount":"0.1"}`,
		}),
		textResponse("Checked the quote again for you."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "swap then double-check the quote",
		Address:     testCaller,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.TransactionData)
	assert.Empty(t, resp.Action)
	assert.Equal(t, []string{"swap_edu_for_tokens", "get_swap_quote"}, resp.ToolCallSequence)
}

func TestChatIterationCap(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_loop", Name: "get_swap_quote",
			Arguments: `{"token_in":"EDU","token_out":"USDC","amount":"0.1"}`,
		}),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "loop forever",
		Address:     testCaller,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, oracle.calls)
	assert.NotEmpty(t, resp.Content)
	assert.Contains(t, resp.Content, "step limit")
	assert.Contains(t, resp.Content, "amountOut")
	assert.Len(t, resp.ToolCallSequence, 5)
}

func TestChatToolFailureIsContained(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{ID: "call_1", Name: "broken_tool", Arguments: `{}`}),
		textResponse("That lookup failed, sorry."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "try the broken one",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, oracle.calls)
	assert.Equal(t, "That lookup failed, sorry.", resp.Content)

	// The failure went back to the oracle as a tool-result turn
	toolTurn := oracle.requests[1].Messages[2]
	assert.Equal(t, openai.ChatMessageRoleTool, toolTurn.Role)
	assert.Contains(t, toolTurn.Content, "upstream rpc down")
}

func TestChatActionWithoutDescriptorIsContained(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{ID: "call_1", Name: "lame_action", Arguments: `{}`}),
		textResponse("Could not prepare that."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "send something",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.TransactionData)

	toolTurn := oracle.requests[1].Messages[2]
	assert.Contains(t, toolTurn.Content, "missing transaction data")
}

func TestChatOracleTransportErrorIsFatal(t *testing.T) {
	oracle := &mockOracle{err: errors.New("connection refused")}
	engine, _ := testEngine(t, oracle)

	_, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle call failed")
	assert.Equal(t, 1, oracle.calls)
}

func TestChatRequestValidation(t *testing.T) {
	engine, _ := testEngine(t, &mockOracle{})

	_, err := engine.Chat(context.Background(), &ChatRequest{AgentID: "dex"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatDisabledOracle(t *testing.T) {
	engine, _ := testEngine(t, disabledOracle{})

	_, err := engine.Chat(context.Background(), &ChatRequest{UserMessage: "hi"})
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestChatToolNotPermittedForAgent(t *testing.T) {
	// The transaction profile does not include swap tools
	oracle := &mockOracle{responses: []*llm.CompletionResult{
		toolCallResponse(llm.ToolCall{
			ID: "call_1", Name: "swap_edu_for_tokens",
			Arguments: `{"token_out":"USDC","amount":"0.1"}`,
		}),
		textResponse("I cannot swap from here."),
	}}
	engine, _ := testEngine(t, oracle)

	resp, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "transaction",
		UserMessage: "swap please",
		Address:     testCaller,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.TransactionData)

	toolTurn := oracle.requests[1].Messages[2]
	assert.Contains(t, toolTurn.Content, "not permitted")
}

func TestChatHistorySeedsConversation(t *testing.T) {
	oracle := &mockOracle{responses: []*llm.CompletionResult{textResponse("ok")}}
	engine, _ := testEngine(t, oracle)

	_, err := engine.Chat(context.Background(), &ChatRequest{
		AgentID:     "utility",
		UserMessage: "and now?",
		History: []HistoryTurn{
			{Role: "user", Content: "what is WEDU?"},
			{Role: "assistant", Content: "Wrapped EDU."},
			{Role: "tool", Content: "ignored"},
		},
	})
	require.NoError(t, err)

	require.Len(t, oracle.requests, 1)
	messages := oracle.requests[0].Messages
	require.Len(t, messages, 3, "tool turns in caller history are dropped")
	assert.Equal(t, "what is WEDU?", messages[0].Content)
	assert.Equal(t, "Wrapped EDU.", messages[1].Content)
	assert.Equal(t, "and now?", messages[2].Content)
}
