package embeddings

import (
	"fmt"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

// New creates an embedding provider from the embeddings config section.
//
// Supported providers:
//   - "fastembed": local ONNX models, no API key needed (default)
//   - "openai": OpenAI embeddings API or any compatible endpoint
//   - "ollama": local Ollama server
func New(cfg config.EmbeddingsConfig) (Provider, error) {
	switch cfg.Provider {
	case "fastembed", "":
		return NewFastEmbedProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: embeddings provider %q (supported: fastembed, openai, ollama)",
			config.ErrUnsupportedProvider, cfg.Provider)
	}
}
