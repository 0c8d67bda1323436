package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "RECALL_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// subsections maps each top-level config section to its nested sections,
// used to translate environment variable names into koanf paths.
var subsections = map[string]map[string]bool{
	"vectorstore": {"chromem": true, "qdrant": true},
	"memory":      {"dedup": true},
}

// DefaultPath returns the default config file location,
// ~/.config/recall/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "recall", "config.yaml"), nil
}

// Load reads configuration from the given YAML file (if it exists), applies
// RECALL_* environment overrides, then defaults and validation.
//
// Precedence (highest first):
//  1. Environment variables (RECALL_LLM_PROVIDER, RECALL_MEMORY_DEDUP_POLICY, ...)
//  2. YAML config file
//  3. Code defaults
//
// An empty configPath selects the default location. A missing file is not
// an error; the env/default layers still apply.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); err == nil {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToPath), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile opens and reads the config file with a size cap. The file
// is read through one descriptor so the size check cannot race a rewrite.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", ErrInvalidConfig, path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return content, nil
}

// envToPath maps an environment variable name to a koanf path.
//
//	RECALL_LLM_API_KEY              -> llm.api_key
//	RECALL_VECTORSTORE_CHROMEM_PATH -> vectorstore.chromem.path
//	RECALL_MEMORY_DEFAULT_USER_ID   -> memory.default_user_id
func envToPath(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	tokens := strings.Split(s, "_")
	if len(tokens) < 2 {
		return s
	}

	path := []string{tokens[0]}
	rest := tokens[1:]

	if nested, ok := subsections[tokens[0]]; ok && nested[rest[0]] {
		path = append(path, rest[0])
		rest = rest[1:]
	}

	if len(rest) > 0 {
		path = append(path, strings.Join(rest, "_"))
	}
	return strings.Join(path, ".")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
