package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/ollama/ollama/api"
)

const (
	defaultOllamaModel = "llama3.2"
	defaultOllamaHost  = "http://localhost:11434"
)

// OllamaClient implements Client against a local Ollama server. No API key
// is required; vision support depends on the configured model.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient creates a completion client backed by Ollama.
func NewOllamaClient(cfg config.LLMConfig) (*OllamaClient, error) {
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
		model = defaultOllamaModel
	}

	return &OllamaClient{
		client: api.NewClient(uri, http.DefaultClient),
		model:  model,
	}, nil
}

// Complete implements Client.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.invoke(ctx, api.Message{Role: "user", Content: prompt})
}

// CompleteWithImage implements Client.
func (c *OllamaClient) CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.invoke(ctx, api.Message{
		Role:    "user",
		Content: prompt,
		Images:  []api.ImageData{api.ImageData(img.Data)},
	})
}

func (c *OllamaClient) invoke(ctx context.Context, msg api.Message) (string, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{msg},
		Stream:   new(bool), // false
	}

	var text string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", ErrProvider, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: ollama", ErrEmptyResponse)
	}
	return text, nil
}

var _ Client = (*OllamaClient)(nil)
