package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/orchestrator"
)

type wsFrame struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func dialGateway(t *testing.T, chat ChatHandler) (*bus.EventBus, *websocket.Conn) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	eventBus := bus.NewEventBus(logger)
	t.Cleanup(eventBus.Stop)

	gateway := NewGateway(eventBus, chat, logger)

	server := httptest.NewServer(http.HandlerFunc(gateway.HandleUpgrade))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return eventBus, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame wsFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestGatewayBroadcastsBusEvents(t *testing.T) {
	eventBus, conn := dialGateway(t, &stubChat{})

	// Give the hub time to register the client
	time.Sleep(50 * time.Millisecond)

	eventBus.PublishToolCall("req-1", "dex", "get_swap_quote", map[string]interface{}{
		"amount": "1",
	})

	frame := readFrame(t, conn)
	assert.Equal(t, string(bus.EventToolCall), frame.Type)
	assert.Equal(t, "req-1", frame.Payload["requestId"])
	assert.Equal(t, "get_swap_quote", frame.Payload["tool"])
}

func TestGatewayChatMessage(t *testing.T) {
	chat := &stubChat{response: &orchestrator.ChatResponse{Content: "done"}}
	_, conn := dialGateway(t, chat)
	time.Sleep(50 * time.Millisecond)

	msg := map[string]interface{}{
		"type": "CHAT_MESSAGE",
		"payload": map[string]interface{}{
			"agentId":     "dex",
			"userMessage": "quote 1 EDU",
			"address":     "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		},
	}
	require.NoError(t, conn.WriteJSON(msg))

	// The handler runs asynchronously; poll for its effect
	deadline := time.Now().Add(2 * time.Second)
	for chat.lastReq == nil && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	require.NotNil(t, chat.lastReq)
	assert.Equal(t, "dex", chat.lastReq.AgentID)
	assert.Equal(t, "quote 1 EDU", chat.lastReq.UserMessage)
}

func TestGatewayRejectsInvalidMessages(t *testing.T) {
	_, conn := dialGateway(t, &stubChat{})
	time.Sleep(50 * time.Millisecond)

	t.Run("missing user message", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"type":    "CHAT_MESSAGE",
			"payload": map[string]interface{}{"agentId": "dex"},
		}))

		frame := readFrame(t, conn)
		assert.Equal(t, "error", frame.Type)
		assert.Contains(t, frame.Payload["message"], "userMessage")
	})

	t.Run("unknown type", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]interface{}{
			"type":    "EXECUTE_WORKFLOW",
			"payload": map[string]interface{}{},
		}))

		frame := readFrame(t, conn)
		assert.Equal(t, "error", frame.Type)
	})
}
