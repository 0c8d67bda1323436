package embeddings

import (
	"context"
	"testing"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingsConfig
		want    any
		wantErr error
	}{
		{
			name: "openai",
			cfg:  config.EmbeddingsConfig{Provider: "openai", APIKey: config.Secret("sk-test")},
			want: &OpenAIProvider{},
		},
		{
			name: "ollama",
			cfg:  config.EmbeddingsConfig{Provider: "ollama"},
			want: &OllamaProvider{},
		},
		{
			name:    "openai without key",
			cfg:     config.EmbeddingsConfig{Provider: "openai"},
			wantErr: config.ErrMissingCredentials,
		},
		{
			name:    "unknown provider",
			cfg:     config.EmbeddingsConfig{Provider: "tei"},
			wantErr: config.ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestOpenAIProvider_Dimensions(t *testing.T) {
	p, err := NewOpenAIProvider(config.EmbeddingsConfig{
		Provider: "openai",
		APIKey:   config.Secret("sk-test"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1536, p.Dimension())

	p, err = NewOpenAIProvider(config.EmbeddingsConfig{
		Provider:   "openai",
		Model:      "text-embedding-3-large",
		APIKey:     config.Secret("sk-test"),
		Dimensions: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, p.Dimension())
}

func TestEmbed_EmptyInput(t *testing.T) {
	openaiProvider, err := NewOpenAIProvider(config.EmbeddingsConfig{
		Provider: "openai",
		APIKey:   config.Secret("sk-test"),
	})
	require.NoError(t, err)

	ollamaProvider, err := NewOllamaProvider(config.EmbeddingsConfig{Provider: "ollama"})
	require.NoError(t, err)

	providers := map[string]Provider{
		"openai": openaiProvider,
		"ollama": ollamaProvider,
	}
	for name, p := range providers {
		t.Run(name, func(t *testing.T) {
			_, err := p.Embed(context.Background(), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyInput)

			_, err = p.EmbedBatch(context.Background(), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyInput)
		})
	}
}

func TestOllamaProvider_InvalidBaseURL(t *testing.T) {
	_, err := NewOllamaProvider(config.EmbeddingsConfig{
		Provider: "ollama",
		BaseURL:  "://not-a-url",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
