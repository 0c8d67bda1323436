package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

var chromemTracer = otel.Tracer("recall.vectorstore.chromem")

const (
	metaUserID    = "user_id"
	metaAgentID   = "agent_id"
	metaCreatedAt = "created_at"
)

// ChromemStore implements Store on chromem-go, an embeddable vector
// database that persists to gob files. No external service is needed.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	logger     *zap.Logger

	mu        sync.Mutex
	dimension int
}

// NewChromemStore opens (or creates) a persistent chromem database at the
// configured path.
func NewChromemStore(cfg config.VectorStoreConfig, logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := config.ExpandPath(cfg.Chromem.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: expanding path: %v", ErrConnectionFailed, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrConnectionFailed, path, err)
	}

	db, err := chromem.NewPersistentDB(path, cfg.Chromem.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: opening chromem db: %v", ErrConnectionFailed, err)
	}

	logger.Info("chromem store opened",
		zap.String("path", path),
		zap.String("collection", cfg.Collection),
		zap.Bool("compress", cfg.Chromem.Compress),
	)

	return &ChromemStore{
		db:     db,
		name:   cfg.Collection,
		logger: logger,
	}, nil
}

// precomputedOnly rejects text embedding requests. All vectors are
// computed by the embeddings provider before they reach the store.
func precomputedOnly(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings are precomputed")
}

// EnsureSchema implements Store.
func (s *ChromemStore) EnsureSchema(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection != nil {
		return nil
	}

	collection, err := s.db.GetOrCreateCollection(s.name, nil, precomputedOnly)
	if err != nil {
		return fmt.Errorf("%w: collection %s: %v", ErrStore, s.name, err)
	}
	s.collection = collection
	s.dimension = dimension
	return nil
}

// Upsert implements Store.
func (s *ChromemStore) Upsert(ctx context.Context, rec Record) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Upsert")
	defer span.End()

	if err := validateRecord(rec); err != nil {
		return err
	}
	collection, err := s.ready()
	if err != nil {
		return err
	}
	if s.dimension > 0 && len(rec.Embedding) != s.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(rec.Embedding), s.dimension)
	}

	doc := chromem.Document{
		ID:      rec.ID,
		Content: rec.Content,
		Metadata: map[string]string{
			metaUserID:    rec.UserID,
			metaAgentID:   rec.AgentID,
			metaCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
		Embedding: rec.Embedding,
	}
	if err := collection.AddDocument(ctx, doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: upsert %s: %v", ErrStore, rec.ID, err)
	}

	s.logger.Debug("upserted memory",
		zap.String("id", rec.ID),
		zap.String("user_id", rec.UserID),
		zap.String("agent_id", rec.AgentID),
	)
	return nil
}

// Nearest implements Store.
func (s *ChromemStore) Nearest(ctx context.Context, scope Scope, embedding []float32, k int) ([]Match, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Nearest")
	defer span.End()
	span.SetAttributes(attribute.Int("k", k))

	collection, err := s.ready()
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= document count.
	if count := collection.Count(); count == 0 {
		return nil, nil
	} else if k > count {
		k = count
	}

	where := map[string]string{
		metaUserID:  scope.UserID,
		metaAgentID: scope.AgentID,
	}
	results, err := collection.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: query: %v", ErrStore, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		createdAt, _ := time.Parse(time.RFC3339Nano, r.Metadata[metaCreatedAt])
		matches = append(matches, Match{
			Record: Record{
				ID:        r.ID,
				UserID:    r.Metadata[metaUserID],
				AgentID:   r.Metadata[metaAgentID],
				Content:   r.Content,
				Embedding: r.Embedding,
				CreatedAt: createdAt,
			},
			Similarity: clampSimilarity(r.Similarity),
		})
	}
	span.SetAttributes(attribute.Int("results", len(matches)))
	return matches, nil
}

// Close implements Store. chromem persists on every write, so there is
// nothing to flush.
func (s *ChromemStore) Close() error {
	return nil
}

func (s *ChromemStore) ready() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == nil {
		return nil, fmt.Errorf("%w: schema not initialized", ErrStore)
	}
	return s.collection, nil
}

var _ Store = (*ChromemStore)(nil)
