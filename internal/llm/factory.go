package llm

import (
	"fmt"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

// New creates a completion client from the llm config section.
//
// Supported providers:
//   - "anthropic": Anthropic Messages API (default)
//   - "openai": OpenAI chat completions, or any compatible endpoint
//   - "ollama": local Ollama server
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic", "":
		return NewAnthropicClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	case "ollama":
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("%w: llm provider %q (supported: anthropic, openai, ollama)",
			config.ErrUnsupportedProvider, cfg.Provider)
	}
}
