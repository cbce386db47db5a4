package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/bus"
)

// WebSocketLogHook sends log entries to the EventBus for WebSocket clients
type WebSocketLogHook struct {
	eventBus  *bus.EventBus
	agentName string
}

// NewWebSocketLogHook creates a new WebSocket log hook
func NewWebSocketLogHook(eventBus *bus.EventBus, agentName string) *WebSocketLogHook {
	return &WebSocketLogHook{
		eventBus:  eventBus,
		agentName: agentName,
	}
}

// Levels returns the log levels this hook is interested in
func (h *WebSocketLogHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

// Fire is called when a log event occurs
func (h *WebSocketLogHook) Fire(entry *logrus.Entry) error {
	if h.eventBus == nil {
		return nil
	}

	requestID := ""
	if rid, ok := entry.Data["requestId"].(string); ok {
		requestID = rid
	}

	tool := ""
	if t, ok := entry.Data["tool"].(string); ok {
		tool = t
	}

	message := entry.Message

	var fieldParts []string
	for key, value := range entry.Data {
		if key != "requestId" && key != "tool" {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", key, value))
		}
	}
	if len(fieldParts) > 0 {
		message = fmt.Sprintf("%s [%s]", message, strings.Join(fieldParts, ", "))
	}

	h.eventBus.PublishAsync(bus.EventServerLog, map[string]interface{}{
		"requestId": requestID,
		"level":     entry.Level.String(),
		"message":   message,
		"source":    h.agentName,
		"tool":      tool,
		"timestamp": entry.Time.Format(time.RFC3339),
	})

	return nil
}

// RequestLogger wraps a logger with chat request context
type RequestLogger struct {
	*logrus.Logger
	requestID string
	agentID   string
}

// NewRequestLogger creates a logger scoped to a single chat request
func NewRequestLogger(logger *logrus.Logger, requestID, agentID string) *RequestLogger {
	return &RequestLogger{
		Logger:    logger,
		requestID: requestID,
		agentID:   agentID,
	}
}

func (l *RequestLogger) addContext(fields logrus.Fields) logrus.Fields {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if l.requestID != "" {
		fields["requestId"] = l.requestID
	}
	if l.agentID != "" {
		fields["agentId"] = l.agentID
	}
	return fields
}

// Infof logs at info level with format and request context
func (l *RequestLogger) Infof(format string, args ...interface{}) {
	l.WithFields(l.addContext(nil)).Infof(format, args...)
}

// Debugf logs at debug level with format and request context
func (l *RequestLogger) Debugf(format string, args ...interface{}) {
	l.WithFields(l.addContext(nil)).Debugf(format, args...)
}

// Warnf logs at warn level with format and request context
func (l *RequestLogger) Warnf(format string, args ...interface{}) {
	l.WithFields(l.addContext(nil)).Warnf(format, args...)
}

// Errorf logs at error level with format and request context
func (l *RequestLogger) Errorf(format string, args ...interface{}) {
	l.WithFields(l.addContext(nil)).Errorf(format, args...)
}
