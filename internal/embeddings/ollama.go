package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

const (
	defaultOllamaEmbedModel = "nomic-embed-text"
	defaultOllamaHost       = "http://localhost:11434"
)

// OllamaProvider generates embeddings through a local Ollama server.
type OllamaProvider struct {
	client     *api.Client
	model      string
	dimensions int
}

// NewOllamaProvider creates an Ollama embedding provider.
func NewOllamaProvider(cfg config.EmbeddingsConfig) (*OllamaProvider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaHost
	}
	uri, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama base_url %q: %v", config.ErrInvalidConfig, base, err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaEmbedModel
	}

	return &OllamaProvider{
		client:     api.NewClient(uri, http.DefaultClient),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates an embedding for a single text.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single request.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := p.client.Embed(ctx, &api.EmbedRequest{
		Model: p.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingFailed, len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// Dimension returns the configured dimension, or 0 when unset; Ollama
// models report their dimension only at embed time.
func (p *OllamaProvider) Dimension() int {
	return p.dimensions
}

// Close is a no-op for the HTTP-backed provider.
func (p *OllamaProvider) Close() error { return nil }

var _ Provider = (*OllamaProvider)(nil)
