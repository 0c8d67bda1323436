package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

var qdrantTracer = otel.Tracer("recall.vectorstore.qdrant")

// qdrantMaxMessageSize bounds gRPC messages; large embedding batches can
// exceed the 4MB default.
const qdrantMaxMessageSize = 32 * 1024 * 1024

const payloadContent = "content"

// QdrantStore implements Store against a Qdrant server over gRPC.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *zap.Logger
}

// NewQdrantStore connects to Qdrant and verifies the server responds.
func NewQdrantStore(cfg config.VectorStoreConfig, logger *zap.Logger) (*QdrantStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey.Value(),
		UseTLS: cfg.Qdrant.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(qdrantMaxMessageSize),
				grpc.MaxCallSendMsgSize(qdrantMaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	logger.Info("qdrant store connected",
		zap.String("host", cfg.Qdrant.Host),
		zap.Int("port", cfg.Qdrant.Port),
		zap.String("collection", cfg.Collection),
		zap.Bool("tls", cfg.Qdrant.UseTLS),
	)

	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		logger:     logger,
	}, nil
}

// EnsureSchema implements Store. The collection is created with cosine
// distance when it does not exist yet.
func (s *QdrantStore) EnsureSchema(ctx context.Context, dimension int) error {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.EnsureSchema")
	defer span.End()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: checking collection %s: %v", ErrStore, s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: creating collection %s: %v", ErrStore, s.collection, err)
	}

	s.logger.Info("created qdrant collection",
		zap.String("collection", s.collection),
		zap.Int("dimension", dimension),
	)
	return nil
}

// Upsert implements Store.
func (s *QdrantStore) Upsert(ctx context.Context, rec Record) error {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Upsert")
	defer span.End()

	if err := validateRecord(rec); err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(rec.ID),
		Vectors: qdrant.NewVectors(rec.Embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadContent: rec.Content,
			metaUserID:     rec.UserID,
			metaAgentID:    rec.AgentID,
			metaCreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
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
func (s *QdrantStore) Nearest(ctx context.Context, scope Scope, embedding []float32, k int) ([]Match, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Nearest")
	defer span.End()
	span.SetAttributes(attribute.Int("k", k))

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(metaUserID, scope.UserID),
			qdrant.NewMatch(metaAgentID, scope.AgentID),
		},
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: query: %v", ErrStore, err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		createdAt, _ := time.Parse(time.RFC3339Nano, payload[metaCreatedAt].GetStringValue())
		matches = append(matches, Match{
			Record: Record{
				ID:        p.GetId().GetUuid(),
				UserID:    payload[metaUserID].GetStringValue(),
				AgentID:   payload[metaAgentID].GetStringValue(),
				Content:   payload[payloadContent].GetStringValue(),
				CreatedAt: createdAt,
			},
			Similarity: clampSimilarity(p.GetScore()),
		})
	}
	span.SetAttributes(attribute.Int("results", len(matches)))
	return matches, nil
}

// Close implements Store.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

var _ Store = (*QdrantStore)(nil)
