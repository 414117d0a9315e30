package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that override file values.
const (
	EnvWindowSize        = "NARABE_WINDOW_SIZE"
	EnvContextDir        = "NARABE_CONTEXT_DIR"
	EnvEmbeddingProvider = "NARABE_EMBEDDING_PROVIDER"
	EnvOpenAIKey         = "OPENAI_API_KEY"
)

// applyEnv overrides cfg with the non-empty environment variables above.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvWindowSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be an integer", EnvWindowSize, v)
		}
		cfg.Alignment.WindowSize = n
	}
	if v := os.Getenv(EnvContextDir); v != "" {
		cfg.Storage.ContextDir = v
	}
	if v := os.Getenv(EnvEmbeddingProvider); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		cfg.Embedding.APIKey = v
	}
	return nil
}
