package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/fyrsmithlabs/recall/internal/dedup"
	"github.com/fyrsmithlabs/recall/internal/embeddings"
	"github.com/fyrsmithlabs/recall/internal/extraction"
	"github.com/fyrsmithlabs/recall/internal/llm"
	"github.com/fyrsmithlabs/recall/internal/vectorstore"
	"github.com/fyrsmithlabs/recall/pkg/conversation"
)

var tracer = otel.Tracer("recall.memory")

// extractor abstracts the candidate extraction stage.
type extractor interface {
	Extract(ctx context.Context, messages []conversation.Message) ([]string, error)
}

// Engine orchestrates extraction, deduplication, persistence, and
// retrieval. It is safe for concurrent use when its components are.
type Engine struct {
	store     vectorstore.Store
	embedder  embeddings.Provider
	client    llm.Client
	checker   dedup.Checker
	extractor extractor
	cfg       config.MemoryConfig
	logger    *zap.Logger
}

// newEngine assembles an engine from explicit components. Callers go
// through Open.
func newEngine(
	store vectorstore.Store,
	embedder embeddings.Provider,
	client llm.Client,
	checker dedup.Checker,
	ext extractor,
	cfg config.MemoryConfig,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:     store,
		embedder:  embedder,
		client:    client,
		checker:   checker,
		extractor: ext,
		cfg:       cfg,
		logger:    logger,
	}
}

// Open builds an engine from configuration, wiring the completion
// provider, embedding provider, vector store, and dedup policy.
func Open(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("creating embeddings provider: %w", err)
	}

	store, err := vectorstore.New(cfg.VectorStore, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx, embedder.Dimension()); err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("preparing schema: %w", err)
	}

	checker, err := dedup.New(cfg.Memory.Dedup, store, client, logger)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, err
	}

	logger.Info("memory engine ready",
		zap.String("llm", cfg.LLM.Provider),
		zap.String("embeddings", cfg.Embeddings.Provider),
		zap.String("vectorstore", cfg.VectorStore.Provider),
		zap.String("dedup_policy", cfg.Memory.Dedup.Policy),
	)

	return newEngine(store, embedder, client, checker,
		extraction.New(client, logger), cfg.Memory, logger), nil
}

// Add extracts atomic facts from the batch and persists the ones that do
// not duplicate stored memories in the scope. It returns the memories
// persisted by this call. When a candidate fails partway through, the
// memories persisted before the failure are returned alongside the error.
func (e *Engine) Add(ctx context.Context, messages []conversation.Message, opts ...ScopeOption) ([]Memory, error) {
	ctx, span := tracer.Start(ctx, "Engine.Add")
	defer span.End()

	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	scope, err := e.resolveScope(opts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user_id", scope.UserID),
		attribute.Int("messages", len(messages)),
	)

	candidates, err := e.extractor.Extract(ctx, messages)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(candidates) == 0 {
		e.logger.Debug("nothing to remember", zap.Int("messages", len(messages)))
		return nil, nil
	}

	var added []Memory
	for _, candidate := range candidates {
		mem, err := e.addOne(ctx, scope, candidate)
		if err != nil {
			span.RecordError(err)
			return added, err
		}
		if mem != nil {
			added = append(added, *mem)
		}
	}

	span.SetAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.Int("added", len(added)),
	)
	e.logger.Info("processed conversation batch",
		zap.String("user_id", scope.UserID),
		zap.String("agent_id", scope.AgentID),
		zap.Int("candidates", len(candidates)),
		zap.Int("added", len(added)),
	)
	return added, nil
}

// addOne embeds, dedup-checks, and persists a single candidate. A nil
// memory with nil error means the candidate was suppressed as duplicate.
// Persisting sequentially lets later candidates in the same batch see
// earlier ones during their dedup check.
func (e *Engine) addOne(ctx context.Context, scope vectorstore.Scope, candidate string) (*Memory, error) {
	embedding, err := e.embedder.Embed(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("embedding candidate: %w", err)
	}

	dup, err := e.checker.IsDuplicate(ctx, scope, candidate, embedding)
	if err != nil {
		return nil, err
	}
	if dup {
		e.logger.Debug("suppressed duplicate candidate", zap.String("user_id", scope.UserID))
		return nil, nil
	}

	rec := vectorstore.Record{
		ID:        uuid.New().String(),
		UserID:    scope.UserID,
		AgentID:   scope.AgentID,
		Content:   candidate,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	return &Memory{
		ID:        rec.ID,
		UserID:    rec.UserID,
		AgentID:   rec.AgentID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Search returns up to k memories in the scope ordered by descending
// similarity to the query, newest first on ties.
func (e *Engine) Search(ctx context.Context, query string, k int, opts ...ScopeOption) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "Engine.Search")
	defer span.End()

	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	scope, err := e.resolveScope(opts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user_id", scope.UserID),
		attribute.Int("k", k),
	)

	effective := query
	if e.cfg.RewriteQueries {
		effective = e.rewriteQuery(ctx, query)
	}

	embedding, err := e.embedder.Embed(ctx, effective)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := e.store.Nearest(ctx, scope, embedding, k)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Memory: Memory{
				ID:        m.ID,
				UserID:    m.UserID,
				AgentID:   m.AgentID,
				Content:   m.Content,
				Embedding: m.Embedding,
				CreatedAt: m.CreatedAt,
			},
			Similarity: m.Similarity,
		}
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// rewriteQuery asks the completion provider for a retrieval-friendlier
// form of the query. Any failure falls back to the original query.
func (e *Engine) rewriteQuery(ctx context.Context, query string) string {
	rewritten, err := e.client.Complete(ctx, llm.RewritePrompt(query))
	if err != nil {
		e.logger.Warn("query rewrite failed, using original", zap.Error(err))
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	e.logger.Debug("rewrote query",
		zap.String("original", query),
		zap.String("rewritten", rewritten),
	)
	return rewritten
}

// Close releases the engine's store and embedder resources.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.store.Close(); err != nil {
		firstErr = err
	}
	if err := e.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// resolveScope merges per-call overrides over the configured defaults.
func (e *Engine) resolveScope(opts []ScopeOption) (vectorstore.Scope, error) {
	override := scopeOverride{
		userID:  e.cfg.DefaultUserID,
		agentID: e.cfg.DefaultAgentID,
	}
	for _, opt := range opts {
		opt(&override)
	}
	if override.userID == "" || override.agentID == "" {
		return vectorstore.Scope{}, fmt.Errorf("%w: user and agent IDs are required", config.ErrMissingScope)
	}
	return vectorstore.Scope{UserID: override.userID, AgentID: override.agentID}, nil
}
