package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
embeddings:
  provider: openai
  model: text-embedding-3-small
  dimensions: 1536
vectorstore:
  provider: qdrant
  collection: team_memories
  qdrant:
    host: qdrant.internal
    port: 7334
memory:
  default_user_id: alice
  dedup:
    policy: llm
    candidates: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey.Value())
	assert.Equal(t, 1536, cfg.Embeddings.Dimensions)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "team_memories", cfg.VectorStore.Collection)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 7334, cfg.VectorStore.Qdrant.Port)
	assert.Equal(t, "alice", cfg.Memory.DefaultUserID)
	assert.Equal(t, DedupPolicyLLM, cfg.Memory.Dedup.Policy)
	assert.Equal(t, 7, cfg.Memory.Dedup.Candidates)

	// Untouched fields still get defaults.
	assert.Equal(t, "default_agent", cfg.Memory.DefaultAgentID)
	assert.InDelta(t, 0.95, cfg.Memory.Dedup.Threshold, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: openai
memory:
  default_user_id: from-file
`)

	t.Setenv("RECALL_LLM_PROVIDER", "ollama")
	t.Setenv("RECALL_MEMORY_DEFAULT_USER_ID", "from-env")
	t.Setenv("RECALL_MEMORY_DEDUP_THRESHOLD", "0.9")
	t.Setenv("RECALL_VECTORSTORE_CHROMEM_PATH", "/tmp/recall-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "from-env", cfg.Memory.DefaultUserID)
	assert.InDelta(t, 0.9, cfg.Memory.Dedup.Threshold, 1e-9)
	assert.Equal(t, "/tmp/recall-test", cfg.VectorStore.Chromem.Path)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "memories", cfg.VectorStore.Collection)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "llm: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfigFile(t, `
memory:
  dedup:
    policy: fuzzy
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEnvToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RECALL_LLM_PROVIDER", "llm.provider"},
		{"RECALL_LLM_API_KEY", "llm.api_key"},
		{"RECALL_LLM_MAX_TOKENS", "llm.max_tokens"},
		{"RECALL_EMBEDDINGS_CACHE_DIR", "embeddings.cache_dir"},
		{"RECALL_VECTORSTORE_PROVIDER", "vectorstore.provider"},
		{"RECALL_VECTORSTORE_CHROMEM_PATH", "vectorstore.chromem.path"},
		{"RECALL_VECTORSTORE_QDRANT_USE_TLS", "vectorstore.qdrant.use_tls"},
		{"RECALL_MEMORY_DEFAULT_USER_ID", "memory.default_user_id"},
		{"RECALL_MEMORY_DEDUP_POLICY", "memory.dedup.policy"},
		{"RECALL_SERVER_SHUTDOWN_TIMEOUT", "server.shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envToPath(tt.in))
		})
	}
}
