//go:build !cgo

package embeddings

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

// ErrFastEmbedNotAvailable is returned when the binary was built without
// cgo; local ONNX inference needs it. Use the openai or ollama provider
// instead.
var ErrFastEmbedNotAvailable = errors.New("fastembed: not available (built without cgo)")

// FastEmbedProvider is a stub for non-cgo builds.
type FastEmbedProvider struct{}

// NewFastEmbedProvider always fails when cgo is not available.
func NewFastEmbedProvider(_ config.EmbeddingsConfig) (*FastEmbedProvider, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ErrFastEmbedNotAvailable
}

func (p *FastEmbedProvider) Dimension() int { return 0 }

func (p *FastEmbedProvider) Close() error { return nil }

var _ Provider = (*FastEmbedProvider)(nil)
