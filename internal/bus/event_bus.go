package bus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventChatRequest  EventType = "chatRequest"
	EventChatResponse EventType = "chatResponse"

	EventToolCall   EventType = "toolCall"
	EventToolResult EventType = "toolResult"

	EventOracleTurn EventType = "oracleTurn"
	EventServerLog  EventType = "serverLog"
)

type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

type EventHandler func(event Event)

type EventBus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]EventHandler
	logger    *logrus.Logger
	eventChan chan Event
	stopChan  chan struct{}
	stopOnce  sync.Once
}

func NewEventBus(logger *logrus.Logger) *EventBus {
	eb := &EventBus{
		handlers:  make(map[EventType][]EventHandler),
		logger:    logger,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	go eb.processEvents()

	return eb
}

func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("Handler subscribed to event type: %s", eventType)
}

func (eb *EventBus) SubscribeAll(handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eventTypes := []EventType{
		EventChatRequest,
		EventChatResponse,
		EventToolCall,
		EventToolResult,
		EventOracleTurn,
		EventServerLog,
	}

	for _, eventType := range eventTypes {
		eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	}

	eb.logger.Debug("Handler subscribed to all event types")
}

func (eb *EventBus) Publish(event Event) {
	select {
	case eb.eventChan <- event:
		eb.logger.Debugf("Event published: %s", event.Type)
	default:
		eb.logger.Warnf("Event channel full, dropping event: %s", event.Type)
	}
}

func (eb *EventBus) PublishAsync(eventType EventType, payload map[string]interface{}) {
	go func() {
		eb.Publish(Event{
			Type:    eventType,
			Payload: payload,
		})
	}()
}

func (eb *EventBus) processEvents() {
	for {
		select {
		case event := <-eb.eventChan:
			eb.handleEvent(event)
		case <-eb.stopChan:
			eb.logger.Info("EventBus stopped")
			return
		}
	}
}

func (eb *EventBus) handleEvent(event Event) {
	eb.mu.RLock()
	handlers := eb.handlers[event.Type]
	eb.mu.RUnlock()

	for _, handler := range handlers {
		// Run each handler in a goroutine to prevent blocking
		go func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Errorf("Panic in event handler for %s: %v", event.Type, r)
				}
			}()
			h(event)
		}(handler)
	}
}

// Stop shuts down the dispatch loop. The event channel stays open so a
// publish racing the shutdown cannot panic; undelivered events are
// simply dropped.
func (eb *EventBus) Stop() {
	eb.stopOnce.Do(func() {
		close(eb.stopChan)
	})
}

// PublishToolCall publishes a tool invocation event for a chat request
func (eb *EventBus) PublishToolCall(requestID, agentID, tool string, args map[string]interface{}) {
	eb.PublishAsync(EventToolCall, map[string]interface{}{
		"requestId": requestID,
		"agentId":   agentID,
		"tool":      tool,
		"args":      args,
	})
}

// PublishToolResult publishes the outcome of a tool invocation
func (eb *EventBus) PublishToolResult(requestID, tool string, ok bool, detail string) {
	eb.PublishAsync(EventToolResult, map[string]interface{}{
		"requestId": requestID,
		"tool":      tool,
		"ok":        ok,
		"detail":    detail,
	})
}

// PublishChatResponse publishes the final assembled response for a chat request
func (eb *EventBus) PublishChatResponse(requestID, agentID string, payload map[string]interface{}) {
	eb.PublishAsync(EventChatResponse, map[string]interface{}{
		"requestId": requestID,
		"agentId":   agentID,
		"response":  payload,
	})
}

// PublishOracleTurn publishes a single model turn within the orchestration loop
func (eb *EventBus) PublishOracleTurn(requestID string, iteration int, toolCalls int) {
	eb.PublishAsync(EventOracleTurn, map[string]interface{}{
		"requestId": requestID,
		"iteration": iteration,
		"toolCalls": toolCalls,
	})
}
