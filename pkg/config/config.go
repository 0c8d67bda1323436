// Package config provides configuration loading for recall.
//
// Configuration is read from a YAML file (default
// ~/.config/recall/config.yaml) and overridden by RECALL_* environment
// variables. All defaults are applied in code so an empty config is usable
// with local providers.
package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration problems. These are fatal: they are
// surfaced immediately and never retried.
var (
	// ErrMissingScope indicates neither an explicit nor a default
	// (user_id, agent_id) scope is available for an operation.
	ErrMissingScope = errors.New("missing memory scope: no user_id/agent_id and no configured defaults")

	// ErrUnsupportedProvider indicates an unknown provider discriminant.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingCredentials indicates a provider requires an API key that
	// was not configured.
	ErrMissingCredentials = errors.New("missing provider credentials")

	// ErrInvalidConfig indicates a structurally invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete recall configuration.
type Config struct {
	LLM         LLMConfig         `koanf:"llm"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Memory      MemoryConfig      `koanf:"memory"`
	Logging     LoggingConfig     `koanf:"logging"`
	Server      ServerConfig      `koanf:"server"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	// Provider is the completion backend: "anthropic", "openai" or "ollama".
	Provider string `koanf:"provider"`

	// Model is the completion model identifier.
	Model string `koanf:"model"`

	// APIKey authenticates against hosted providers. Unused for ollama.
	APIKey Secret `koanf:"api_key"`

	// BaseURL overrides the provider endpoint (proxies, self-hosted).
	BaseURL string `koanf:"base_url"`

	// MaxTokens caps completion length. Default 4096.
	MaxTokens int `koanf:"max_tokens"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is the embedding backend: "openai", "ollama" or "fastembed".
	Provider string `koanf:"provider"`

	// Model is the embedding model identifier.
	Model string `koanf:"model"`

	// APIKey authenticates against hosted providers.
	APIKey Secret `koanf:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `koanf:"base_url"`

	// Dimensions is the embedding vector width. Zero means the provider's
	// model default.
	Dimensions int `koanf:"dimensions"`

	// CacheDir is where fastembed caches model files.
	CacheDir string `koanf:"cache_dir"`
}

// VectorStoreConfig selects and configures the persistence backend.
type VectorStoreConfig struct {
	// Provider is the store backend: "chromem" (embedded, default) or
	// "qdrant" (external server).
	Provider string `koanf:"provider"`

	// Collection is the collection holding memory records. Default "memories".
	Collection string `koanf:"collection"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig configures the embedded chromem-go store.
type ChromemConfig struct {
	// Path is the persistence directory. Default "~/.local/share/recall".
	Path string `koanf:"path"`

	// Compress enables gzip compression of persisted data.
	Compress bool `koanf:"compress"`
}

// QdrantConfig configures the Qdrant gRPC client.
type QdrantConfig struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	APIKey Secret `koanf:"api_key"`
	UseTLS bool   `koanf:"use_tls"`
}

// MemoryConfig holds engine behavior settings.
type MemoryConfig struct {
	// DefaultUserID applies when Add/Search is called without a user scope.
	DefaultUserID string `koanf:"default_user_id"`

	// DefaultAgentID applies when Add/Search is called without an agent scope.
	DefaultAgentID string `koanf:"default_agent_id"`

	// RewriteQueries routes search queries through the completion provider
	// for embedding-friendly rewriting before vectorization.
	RewriteQueries bool `koanf:"rewrite_queries"`

	Dedup DedupConfig `koanf:"dedup"`
}

// DedupConfig selects the duplicate-suppression policy.
type DedupConfig struct {
	// Policy is "threshold" (cosine cutoff, default) or "llm"
	// (completion-adjudicated).
	Policy string `koanf:"policy"`

	// Threshold is the similarity cutoff for the threshold policy.
	// Default 0.95.
	Threshold float64 `koanf:"threshold"`

	// Candidates is how many nearest memories the llm policy presents to
	// the adjudicator. Default 5.
	Candidates int `koanf:"candidates"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default "info".
	Level string `koanf:"level"`

	// Format is "json" or "console". Default "json".
	Format string `koanf:"format"`
}

// ServerConfig configures the optional HTTP transport.
type ServerConfig struct {
	// Addr is the listen address. Default ":8484".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful shutdown. Default 10s.
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// Dedup policy discriminants.
const (
	DedupPolicyThreshold = "threshold"
	DedupPolicyLLM       = "llm"
)

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "anthropic"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = "fastembed"
	}
	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "chromem"
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = "memories"
	}
	if c.VectorStore.Chromem.Path == "" {
		c.VectorStore.Chromem.Path = "~/.local/share/recall"
	}
	if c.VectorStore.Qdrant.Host == "" {
		c.VectorStore.Qdrant.Host = "localhost"
	}
	if c.VectorStore.Qdrant.Port == 0 {
		c.VectorStore.Qdrant.Port = 6334
	}
	if c.Memory.DefaultUserID == "" {
		c.Memory.DefaultUserID = "default_user"
	}
	if c.Memory.DefaultAgentID == "" {
		c.Memory.DefaultAgentID = "default_agent"
	}
	if c.Memory.Dedup.Policy == "" {
		c.Memory.Dedup.Policy = DedupPolicyThreshold
	}
	if c.Memory.Dedup.Threshold == 0 {
		c.Memory.Dedup.Threshold = 0.95
	}
	if c.Memory.Dedup.Candidates == 0 {
		c.Memory.Dedup.Candidates = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8484"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(defaultShutdownTimeout)
	}
}

// Validate checks cross-field consistency. Provider-specific validation
// (credentials, reachability) happens in the factories that consume each
// section.
func (c *Config) Validate() error {
	switch c.Memory.Dedup.Policy {
	case DedupPolicyThreshold, DedupPolicyLLM:
	default:
		return fmt.Errorf("%w: dedup policy %q (supported: threshold, llm)", ErrInvalidConfig, c.Memory.Dedup.Policy)
	}
	if c.Memory.Dedup.Threshold < 0 || c.Memory.Dedup.Threshold > 1 {
		return fmt.Errorf("%w: dedup threshold %v must be in [0,1]", ErrInvalidConfig, c.Memory.Dedup.Threshold)
	}
	if c.Memory.Dedup.Candidates <= 0 {
		return fmt.Errorf("%w: dedup candidates must be positive", ErrInvalidConfig)
	}
	if c.Embeddings.Dimensions < 0 {
		return fmt.Errorf("%w: embedding dimensions cannot be negative", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging format %q (supported: json, console)", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
