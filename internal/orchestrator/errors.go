package orchestrator

import "errors"

var (
	// ErrEmptyMessage rejects chat requests without a user message
	ErrEmptyMessage = errors.New("userMessage is required")
	// ErrOracleUnavailable signals that no completion backend is configured
	ErrOracleUnavailable = errors.New("llm backend is not configured")
)
