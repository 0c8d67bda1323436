package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/fyrsmithlabs/recall/pkg/config"
	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements Client using the OpenAI chat completions API.
// Also works against OpenAI-compatible endpoints via llm.base_url.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a completion client backed by OpenAI.
func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("%w: openai requires llm.api_key", config.ErrMissingCredentials)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey.Value())
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.invoke(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

// CompleteWithImage implements Client. The image is sent as a data URL in a
// multi-part user message.
func (c *OpenAIClient) CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MediaType, base64.StdEncoding.EncodeToString(img.Data))
	return c.invoke(ctx, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
			},
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
		},
	})
}

func (c *OpenAIClient) invoke(ctx context.Context, msg openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Client = (*OpenAIClient)(nil)
