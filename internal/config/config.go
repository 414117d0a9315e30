// Package config provides configuration loading and structs for the narabe aligner.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug" toml:"debug"`
	Alignment AlignmentConfig `yaml:"alignment" toml:"alignment"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding" toml:"embedding"`
	Split     SplitConfig     `yaml:"split" toml:"split"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
}

// AlignmentConfig holds window driver settings.
type AlignmentConfig struct {
	WindowSize int `yaml:"window_size" toml:"window_size"`
}

// StorageConfig holds the checkpoint store location and backend.
type StorageConfig struct {
	ContextDir   string `yaml:"context_dir" toml:"context_dir"`
	Backend      string `yaml:"backend" toml:"backend"`
	DatabasePath string `yaml:"database_path" toml:"database_path"`
}

// DatabasePathOrDefault returns the SQLite path; defaults to checkpoints.db inside the context directory.
func (s *StorageConfig) DatabasePathOrDefault() string {
	if s.DatabasePath != "" {
		return s.DatabasePath
	}
	return filepath.Join(s.ContextDir, "checkpoints.db")
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" toml:"provider"`
	ModelPath  string `yaml:"model_path" toml:"model_path"`
	Dimensions int    `yaml:"dimensions" toml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens" toml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size" toml:"cache_size"`
	Model      string `yaml:"model" toml:"model"`
	BaseURL    string `yaml:"base_url" toml:"base_url"`
	APIKey     string `yaml:"api_key,omitempty" toml:"api_key,omitempty"`
}

// SplitConfig holds sentence splitting settings.
type SplitConfig struct {
	Lowercase *bool `yaml:"lowercase" toml:"lowercase"`
}

// LowercaseOrDefault returns whether units are lowercased; defaults to true when unset.
func (s *SplitConfig) LowercaseOrDefault() bool {
	if s.Lowercase != nil {
		return *s.Lowercase
	}
	return true
}

// OutputConfig holds rendering settings.
type OutputConfig struct {
	HTMLColumns []int `yaml:"html_columns" toml:"html_columns"`
}

// Backend and provider names.
const (
	BackendDir     = "dir"
	BackendSQLite  = "sqlite"
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Load reads and parses the config file at path (YAML, or TOML for a .toml extension),
// loads a sibling .env file if present, applies environment overrides and defaults,
// and expands paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotEnv(filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	cfg.expandPaths(configDir)

	return &cfg, nil
}

// Default returns a configuration built from defaults and the environment only,
// with relative paths resolved against the working directory.
func Default() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg.expandPaths(wd)
	return &cfg, nil
}

// Save writes the config to path as YAML, or TOML for a .toml extension. The API key is never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.Embedding.APIKey = ""

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(&out)
	} else {
		data, err = yaml.Marshal(&out)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Alignment.WindowSize < 2 {
		errs = append(errs, fmt.Errorf("alignment.window_size must be at least 2, got %d", c.Alignment.WindowSize))
	}
	switch c.Storage.Backend {
	case BackendDir, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	switch c.Embedding.Provider {
	case ProviderONNX, ProviderMock:
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			errs = append(errs, errors.New("embedding.provider openai requires OPENAI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider))
	}
	for _, n := range c.Output.HTMLColumns {
		if n < 1 || n > 3 {
			errs = append(errs, fmt.Errorf("output.html_columns entries must be 1, 2 or 3, got %d", n))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) expandPaths(base string) {
	c.Storage.ContextDir = expandPath(c.Storage.ContextDir, base)
	c.Storage.DatabasePath = expandPath(c.Storage.DatabasePath, base)
	c.Embedding.ModelPath = expandPath(c.Embedding.ModelPath, base)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadDotEnv loads path into the process environment without overriding variables already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
