// Package dedup decides whether a memory candidate duplicates an already
// stored memory.
//
// Two policies exist: a cosine-similarity threshold against the single
// nearest neighbor, and an LLM adjudication over the top neighbors. Both
// work within one (user_id, agent_id) scope.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/fyrsmithlabs/recall/internal/llm"
	"github.com/fyrsmithlabs/recall/internal/vectorstore"
)

// Checker reports whether content is already covered by a stored memory
// in the scope. The embedding must be the vector for content.
type Checker interface {
	IsDuplicate(ctx context.Context, scope vectorstore.Scope, content string, embedding []float32) (bool, error)
}

// ThresholdChecker flags a candidate as duplicate when its nearest stored
// neighbor is at least as similar as the cutoff.
type ThresholdChecker struct {
	store     vectorstore.Store
	threshold float64
	logger    *zap.Logger
}

// NewThresholdChecker creates the cosine-cutoff policy.
func NewThresholdChecker(store vectorstore.Store, threshold float64, logger *zap.Logger) *ThresholdChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThresholdChecker{store: store, threshold: threshold, logger: logger}
}

// IsDuplicate implements Checker.
func (c *ThresholdChecker) IsDuplicate(ctx context.Context, scope vectorstore.Scope, content string, embedding []float32) (bool, error) {
	matches, err := c.store.Nearest(ctx, scope, embedding, 1)
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	if len(matches) == 0 {
		return false, nil
	}

	// Compare in float32 so a score at exactly the configured cutoff
	// counts as a duplicate; widening the score to float64 can push it
	// just below the cutoff.
	dup := matches[0].Similarity >= float32(c.threshold)
	if dup {
		c.logger.Debug("candidate duplicates stored memory",
			zap.String("existing_id", matches[0].ID),
			zap.Float32("similarity", matches[0].Similarity),
		)
	}
	return dup, nil
}

// AdjudicatedChecker asks the completion provider whether the candidate
// is substantively covered by its nearest stored neighbors.
type AdjudicatedChecker struct {
	store      vectorstore.Store
	client     llm.Client
	candidates int
	logger     *zap.Logger
}

// NewAdjudicatedChecker creates the LLM adjudication policy. candidates
// is how many neighbors the model sees.
func NewAdjudicatedChecker(store vectorstore.Store, client llm.Client, candidates int, logger *zap.Logger) *AdjudicatedChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjudicatedChecker{store: store, client: client, candidates: candidates, logger: logger}
}

// IsDuplicate implements Checker. With no stored neighbors the provider
// is not called.
func (c *AdjudicatedChecker) IsDuplicate(ctx context.Context, scope vectorstore.Scope, content string, embedding []float32) (bool, error) {
	matches, err := c.store.Nearest(ctx, scope, embedding, c.candidates)
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	if len(matches) == 0 {
		return false, nil
	}

	existing := make([]string, len(matches))
	for i, m := range matches {
		existing[i] = m.Content
	}

	answer, err := c.client.Complete(ctx, llm.AdjudicationPrompt(content, existing))
	if err != nil {
		return false, fmt.Errorf("dedup adjudication: %w", err)
	}

	dup := affirmative(answer)
	c.logger.Debug("adjudicated candidate",
		zap.Bool("duplicate", dup),
		zap.Int("neighbors", len(matches)),
	)
	return dup, nil
}

// affirmative interprets the model's verdict. Only a response opening
// with a yes-like token counts as a duplicate.
func affirmative(answer string) bool {
	verdict := strings.ToLower(strings.TrimSpace(answer))
	verdict = strings.TrimLeft(verdict, `"'`)
	return strings.HasPrefix(verdict, "yes") || strings.HasPrefix(verdict, "duplicate")
}

// New creates a checker from the dedup config section.
func New(cfg config.DedupConfig, store vectorstore.Store, client llm.Client, logger *zap.Logger) (Checker, error) {
	switch cfg.Policy {
	case config.DedupPolicyThreshold, "":
		return NewThresholdChecker(store, cfg.Threshold, logger), nil
	case config.DedupPolicyLLM:
		return NewAdjudicatedChecker(store, client, cfg.Candidates, logger), nil
	default:
		return nil, fmt.Errorf("%w: dedup policy %q", config.ErrInvalidConfig, cfg.Policy)
	}
}
