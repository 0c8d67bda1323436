package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fyrsmithlabs/recall/pkg/config"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient creates a completion client backed by Anthropic.
func NewAnthropicClient(cfg config.LLMConfig) (*AnthropicClient, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("%w: anthropic requires llm.api_key", config.ErrMissingCredentials)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey.Value())}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	// max_tokens is mandatory on the Messages API.
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}, nil
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.invoke(ctx, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
}

// CompleteWithImage implements Client. The image travels inline as base64,
// which is the only transport the Messages API accepts for raw bytes.
func (c *AnthropicClient) CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	encoded := base64.StdEncoding.EncodeToString(img.Data)
	return c.invoke(ctx, anthropic.NewUserMessage(
		anthropic.NewImageBlockBase64(img.MediaType, encoded),
		anthropic.NewTextBlock(prompt),
	))
}

func (c *AnthropicClient) invoke(ctx context.Context, msg anthropic.MessageParam) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropic.MessageParam{msg},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", ErrProvider, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: anthropic", ErrEmptyResponse)
	}
	return text, nil
}

var _ Client = (*AnthropicClient)(nil)
