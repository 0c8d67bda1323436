package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "memories", cfg.VectorStore.Collection)
	assert.Equal(t, "default_user", cfg.Memory.DefaultUserID)
	assert.Equal(t, "default_agent", cfg.Memory.DefaultAgentID)
	assert.Equal(t, DedupPolicyThreshold, cfg.Memory.Dedup.Policy)
	assert.InDelta(t, 0.95, cfg.Memory.Dedup.Threshold, 1e-9)
	assert.Equal(t, 5, cfg.Memory.Dedup.Candidates)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
}

func TestConfig_ApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Memory: MemoryConfig{
			DefaultUserID: "alice",
			Dedup:         DedupConfig{Policy: DedupPolicyLLM, Threshold: 0.8, Candidates: 3},
		},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "alice", cfg.Memory.DefaultUserID)
	assert.Equal(t, DedupPolicyLLM, cfg.Memory.Dedup.Policy)
	assert.InDelta(t, 0.8, cfg.Memory.Dedup.Threshold, 1e-9)
	assert.Equal(t, 3, cfg.Memory.Dedup.Candidates)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unknown dedup policy",
			mutate:  func(c *Config) { c.Memory.Dedup.Policy = "fuzzy" },
			wantErr: true,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Memory.Dedup.Threshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative dimensions",
			mutate:  func(c *Config) { c.Embeddings.Dimensions = -1 },
			wantErr: true,
		},
		{
			name:    "unknown logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-very-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-very-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.Error(t, d.UnmarshalText([]byte("-5s")))
	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
