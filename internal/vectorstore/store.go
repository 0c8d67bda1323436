// Package vectorstore provides persistence and similarity search for
// embedded memories.
//
// Two backends are supported: chromem-go (embedded, pure Go, persists to
// disk) and Qdrant (external service over gRPC). Both scope every record
// and every search by (user_id, agent_id) and report similarity in [0, 1].
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStore indicates a backend read or write failure.
	ErrStore = errors.New("vectorstore: operation failed")

	// ErrConnectionFailed indicates the backend could not be reached.
	ErrConnectionFailed = errors.New("vectorstore: connection failed")

	// ErrInvalidRecord indicates a record missing required fields.
	ErrInvalidRecord = errors.New("vectorstore: invalid record")

	// ErrDimensionMismatch indicates an embedding whose length differs
	// from the collection's vector size.
	ErrDimensionMismatch = errors.New("vectorstore: embedding dimension mismatch")
)

// Scope identifies whose memories an operation touches. Both fields are
// required; records never cross scopes.
type Scope struct {
	UserID  string
	AgentID string
}

// Record is a single stored memory.
type Record struct {
	ID        string
	UserID    string
	AgentID   string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// Match is a record returned from a similarity search.
type Match struct {
	Record
	// Similarity is cosine similarity normalized to [0, 1], higher is closer.
	Similarity float32
}

// Store persists embedded records and finds nearest neighbors within a
// scope.
type Store interface {
	// EnsureSchema prepares the backing collection for vectors of the
	// given dimension. It is idempotent.
	EnsureSchema(ctx context.Context, dimension int) error

	// Upsert writes a record, replacing any record with the same ID.
	Upsert(ctx context.Context, rec Record) error

	// Nearest returns up to k records in the scope ordered by descending
	// similarity to the embedding.
	Nearest(ctx context.Context, scope Scope, embedding []float32, k int) ([]Match, error)

	// Close flushes and releases backend resources.
	Close() error
}

// validateRecord checks required record fields before a write.
func validateRecord(rec Record) error {
	switch {
	case rec.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case rec.UserID == "" || rec.AgentID == "":
		return fmt.Errorf("%w: missing scope", ErrInvalidRecord)
	case rec.Content == "":
		return fmt.Errorf("%w: missing content", ErrInvalidRecord)
	case len(rec.Embedding) == 0:
		return fmt.Errorf("%w: missing embedding", ErrInvalidRecord)
	}
	return nil
}

// clampSimilarity normalizes backend scores to [0, 1]. Cosine scores can
// drift slightly outside the range through float rounding.
func clampSimilarity(score float32) float32 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
