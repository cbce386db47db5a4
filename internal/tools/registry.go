package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RegisteredTool pairs a tool definition with its handler
type RegisteredTool struct {
	Definition Definition
	Handler    Handler
	Status     string
	LastUsed   time.Time
}

// Registry manages the registration and execution of tools
type Registry struct {
	tools       map[string]*RegisteredTool
	logger      *logrus.Logger
	mu          sync.RWMutex
	lastUpdated time.Time
}

// NewRegistry creates a new tool registry
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		tools:       make(map[string]*RegisteredTool),
		logger:      logger,
		lastUpdated: time.Now(),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(def Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}

	r.tools[def.Name] = &RegisteredTool{
		Definition: def,
		Handler:    handler,
		Status:     "available",
	}
	r.lastUpdated = time.Now()
	r.logger.Debugf("Registered tool: %s (%s)", def.Name, def.Category)
	return nil
}

// Get returns a registered tool by name
func (r *Registry) Get(name string) (*RegisteredTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tool definitions sorted by name
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Execute runs a tool by name. Every invocation calls the handler
// directly so balance and price reads always reflect current chain state.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (*Result, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	start := time.Now()
	result, err := tool.Handler(ctx, args)
	elapsed := time.Since(start)

	r.mu.Lock()
	tool.LastUsed = time.Now()
	r.mu.Unlock()

	if err != nil {
		r.logger.Warnf("Tool %s failed after %s: %v", name, elapsed, err)
		return nil, err
	}

	if result.Content == "" && result.Data != nil {
		if raw, jsonErr := json.Marshal(result.Data); jsonErr == nil {
			result.Content = string(raw)
		}
	}

	r.logger.Infof("Tool %s executed in %s", name, elapsed)
	return result, nil
}
