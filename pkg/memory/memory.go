// Package memory is the public entry point of the engine. It extracts
// atomic facts from conversation batches, suppresses duplicates, and
// retrieves stored memories by semantic similarity.
//
// Typical usage:
//
//	cfg, err := config.Load("")
//	// handle err
//	engine, err := memory.Open(cfg, logger)
//	// handle err
//	defer engine.Close()
//
//	added, err := engine.Add(ctx, messages, memory.WithUserID("u42"))
//	results, err := engine.Search(ctx, "where does the user live?", 5, memory.WithUserID("u42"))
package memory

import (
	"errors"
	"time"
)

var (
	// ErrInvalidK indicates a non-positive result count for Search.
	ErrInvalidK = errors.New("memory: k must be positive")

	// ErrNoMessages indicates an Add call with an empty batch.
	ErrNoMessages = errors.New("memory: empty conversation batch")

	// ErrEmptyQuery indicates a Search call with a blank query.
	ErrEmptyQuery = errors.New("memory: empty query")
)

// Memory is a stored atomic fact. Embedding is the vector the fact was
// persisted with; it is kept off the wire form.
type Memory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AgentID   string    `json:"agent_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult pairs a memory with its similarity to the query, in
// [0, 1] with higher meaning closer.
type SearchResult struct {
	Memory
	Similarity float32 `json:"similarity"`
}

// ScopeOption overrides the configured default scope per call.
type ScopeOption func(*scopeOverride)

type scopeOverride struct {
	userID  string
	agentID string
}

// WithUserID scopes the operation to the given user.
func WithUserID(userID string) ScopeOption {
	return func(o *scopeOverride) { o.userID = userID }
}

// WithAgentID scopes the operation to the given agent.
func WithAgentID(agentID string) ScopeOption {
	return func(o *scopeOverride) { o.agentID = agentID }
}
