// Package embeddings provides embedding generation via multiple providers.
//
// Supports FastEmbed (local ONNX, requires cgo), OpenAI, and Ollama. A
// factory selects the provider at runtime from the embeddings config
// section, with dimension detection for common models.
package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrEmptyInput indicates a nil or empty embedding input.
	ErrEmptyInput = errors.New("embeddings: empty input")

	// ErrEmbeddingFailed indicates the provider failed to produce vectors.
	ErrEmbeddingFailed = errors.New("embeddings: provider call failed")
)

// Provider generates embedding vectors for text.
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension for the configured model,
	// or 0 when it is not known up front.
	Dimension() int

	// Close releases resources held by the provider.
	Close() error
}
