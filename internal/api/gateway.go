package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/orchestrator"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the HTTP routes; the socket carries no
		// privileged operations
		return true
	},
}

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Client -> Server messages
	MessageChat MessageType = "CHAT_MESSAGE"

	// Server -> Client messages are event-bus events
)

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type    MessageType            `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	clientID string
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// Gateway streams chat, tool and log events to WebSocket clients and
// accepts chat messages over the same socket
type Gateway struct {
	hub         *Hub
	eventBus    *bus.EventBus
	chat        ChatHandler
	logger      *logrus.Logger
	broadcastMu sync.Mutex
}

// NewGateway creates the WebSocket gateway and subscribes it to the bus
func NewGateway(eventBus *bus.EventBus, chat ChatHandler, logger *logrus.Logger) *Gateway {
	hub := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	gateway := &Gateway{
		hub:      hub,
		eventBus: eventBus,
		chat:     chat,
		logger:   logger,
	}
	eventBus.SubscribeAll(gateway.handleEvent)
	go hub.run()

	return gateway
}

// HandleUpgrade upgrades an HTTP request to a WebSocket connection
func (gw *Gateway) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gw.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      gw.hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		clientID: fmt.Sprintf("client-%d", time.Now().UnixNano()),
	}

	gw.hub.register <- client
	gw.logger.Infof("New WebSocket client connected: %s", client.clientID)

	go client.writePump()
	go gw.readPump(client)
}

// readPump pumps messages from the WebSocket connection to the hub
func (gw *Gateway) readPump(client *Client) {
	defer func() {
		client.hub.unregister <- client
		_ = client.conn.Close()
		gw.logger.Infof("WebSocket client disconnected: %s", client.clientID)
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				gw.logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			gw.logger.Errorf("Failed to parse WebSocket message: %v", err)
			continue
		}

		gw.handleClientMessage(client, msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain any queued messages as separate frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hub.run handles client registration, unregistration and broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Write lock: slow clients get dropped from the map here
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// handleClientMessage routes incoming messages
func (gw *Gateway) handleClientMessage(client *Client, msg ClientMessage) {
	gw.logger.Debugf("Received message type %s from client %s", msg.Type, client.clientID)

	switch msg.Type {
	case MessageChat:
		gw.handleChatMessage(client, msg.Payload)
	default:
		gw.logger.Warnf("Unknown message type: %s", msg.Type)
		gw.sendError(client, "unknown message type: "+string(msg.Type))
	}
}

// handleChatMessage runs a chat request; the result reaches the client
// through the broadcast of the chat-response bus event
func (gw *Gateway) handleChatMessage(client *Client, payload map[string]interface{}) {
	req := &orchestrator.ChatRequest{
		AgentID:     stringField(payload, "agentId"),
		UserMessage: stringField(payload, "userMessage"),
		Address:     stringField(payload, "address"),
	}
	if req.UserMessage == "" {
		gw.sendError(client, "userMessage is required")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := gw.chat.Chat(ctx, req); err != nil {
			gw.logger.Errorf("WebSocket chat failed: %v", err)
			gw.eventBus.PublishAsync(bus.EventChatResponse, map[string]interface{}{
				"agentId": req.AgentID,
				"content": "The request failed.",
				"error":   err.Error(),
			})
		}
	}()
}

// handleEvent broadcasts bus events to all connected clients
func (gw *Gateway) handleEvent(event bus.Event) {
	gw.broadcastMu.Lock()
	defer gw.broadcastMu.Unlock()

	wsMessage := map[string]interface{}{
		"type":    string(event.Type),
		"payload": event.Payload,
	}

	messageBytes, err := json.Marshal(wsMessage)
	if err != nil {
		gw.logger.Errorf("Failed to marshal event: %v", err)
		return
	}

	gw.hub.broadcast <- messageBytes
}

// sendError sends an error message to a specific client
func (gw *Gateway) sendError(client *Client, message string) {
	errorMsg := map[string]interface{}{
		"type": "error",
		"payload": map[string]interface{}{
			"message": message,
		},
	}

	msgBytes, _ := json.Marshal(errorMsg)
	client.send <- msgBytes
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}
