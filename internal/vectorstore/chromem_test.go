package vectorstore

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

// unitVector returns a deterministic normalized 4-dim vector pointing
// mostly along the given axis.
func unitVector(axis int, lean float64) []float32 {
	v := make([]float64, 4)
	v[axis] = 1
	v[(axis+1)%4] = lean
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	out := make([]float32, 4)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	cfg := config.VectorStoreConfig{
		Provider:   "chromem",
		Collection: "memories",
	}
	cfg.Chromem.Path = t.TempDir()

	store, err := NewChromemStore(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background(), 4))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(id, userID, agentID, content string, embedding []float32) Record {
	return Record{
		ID:        id,
		UserID:    userID,
		AgentID:   agentID,
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestChromemStore_UpsertAndNearest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "likes coffee", unitVector(0, 0))))
	require.NoError(t, store.Upsert(ctx, record("b", "u1", "ag1", "owns a cat", unitVector(1, 0))))
	require.NoError(t, store.Upsert(ctx, record("c", "u1", "ag1", "lives in Lisbon", unitVector(2, 0))))

	matches, err := store.Nearest(ctx, Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0.2), 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "likes coffee", matches[0].Content)
	assert.Equal(t, "u1", matches[0].UserID)
	assert.Equal(t, "ag1", matches[0].AgentID)
	assert.False(t, matches[0].CreatedAt.IsZero())
	assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
	assert.GreaterOrEqual(t, matches[0].Similarity, float32(0))
	assert.LessOrEqual(t, matches[0].Similarity, float32(1))
}

func TestChromemStore_ScopeFiltering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "fact for u1", unitVector(0, 0))))
	require.NoError(t, store.Upsert(ctx, record("b", "u2", "ag1", "fact for u2", unitVector(0, 0))))
	require.NoError(t, store.Upsert(ctx, record("c", "u1", "ag2", "fact for other agent", unitVector(0, 0))))

	matches, err := store.Nearest(ctx, Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestChromemStore_NearestEmpty(t *testing.T) {
	store := newTestStore(t)

	matches, err := store.Nearest(context.Background(), Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0), 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemStore_KCappedAtCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "only fact", unitVector(0, 0))))

	matches, err := store.Nearest(ctx, Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0), 100)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestChromemStore_UpsertReplacesByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "old content", unitVector(0, 0))))
	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "new content", unitVector(0, 0))))

	matches, err := store.Nearest(ctx, Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new content", matches[0].Content)
}

func TestChromemStore_ValidatesRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  Record
	}{
		{"missing id", record("", "u1", "ag1", "x", unitVector(0, 0))},
		{"missing user", record("a", "", "ag1", "x", unitVector(0, 0))},
		{"missing agent", record("a", "u1", "", "x", unitVector(0, 0))},
		{"missing content", record("a", "u1", "ag1", "", unitVector(0, 0))},
		{"missing embedding", record("a", "u1", "ag1", "x", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upsert(ctx, tt.rec)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestChromemStore_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)

	err := store.Upsert(context.Background(), record("a", "u1", "ag1", "x", []float32{1, 0}))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestChromemStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.VectorStoreConfig{Provider: "chromem", Collection: "memories"}
	cfg.Chromem.Path = dir
	ctx := context.Background()

	store, err := NewChromemStore(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx, 4))
	require.NoError(t, store.Upsert(ctx, record("a", "u1", "ag1", "durable fact", unitVector(0, 0))))
	require.NoError(t, store.Close())

	reopened, err := NewChromemStore(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.EnsureSchema(ctx, 4))

	matches, err := reopened.Nearest(ctx, Scope{UserID: "u1", AgentID: "ag1"}, unitVector(0, 0), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "durable fact", matches[0].Content)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.VectorStoreConfig{Provider: "pinecone"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnsupportedProvider)
}
