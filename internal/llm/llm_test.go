package llm

import (
	"testing"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    any
		wantErr error
	}{
		{
			name: "anthropic",
			cfg:  config.LLMConfig{Provider: "anthropic", APIKey: config.Secret("sk-ant-test")},
			want: &AnthropicClient{},
		},
		{
			name: "openai",
			cfg:  config.LLMConfig{Provider: "openai", APIKey: config.Secret("sk-test")},
			want: &OpenAIClient{},
		},
		{
			name: "ollama",
			cfg:  config.LLMConfig{Provider: "ollama"},
			want: &OllamaClient{},
		},
		{
			name:    "anthropic without key",
			cfg:     config.LLMConfig{Provider: "anthropic"},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name:    "openai without key",
			cfg:     config.LLMConfig{Provider: "openai"},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name:    "unknown provider",
			cfg:     config.LLMConfig{Provider: "bedrock"},
			wantErr: config.ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, client)
		})
	}
}

func TestExtractionPrompt(t *testing.T) {
	prompt := ExtractionPrompt("User: my cat is named Mochi")

	assert.Contains(t, prompt, "User: my cat is named Mochi")
	assert.Contains(t, prompt, "JSON array")
}

func TestAdjudicationPrompt(t *testing.T) {
	prompt := AdjudicationPrompt("the user owns a cat", []string{
		"the user has a pet cat named Mochi",
		"the user lives in Lisbon",
	})

	assert.Contains(t, prompt, "the user owns a cat")
	assert.Contains(t, prompt, "1. the user has a pet cat named Mochi")
	assert.Contains(t, prompt, "2. the user lives in Lisbon")
}

func TestRewritePrompt(t *testing.T) {
	prompt := RewritePrompt("what's my cat called?")
	assert.Contains(t, prompt, "what's my cat called?")
}
