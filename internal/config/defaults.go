package config

// DefaultWindowSize is the number of units per side in one alignment window.
const DefaultWindowSize = 300

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Alignment.WindowSize == 0 {
		cfg.Alignment.WindowSize = DefaultWindowSize
	}
	if cfg.Storage.ContextDir == "" {
		cfg.Storage.ContextDir = "./narabe-context"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendDir
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderONNX
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/narabe/models/paraphrase-multilingual-MiniLM-L12-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Output.HTMLColumns == nil {
		cfg.Output.HTMLColumns = []int{1, 2, 3}
	}
	// Lowercase defaults to true when unset (nil).
	if cfg.Split.Lowercase == nil {
		t := true
		cfg.Split.Lowercase = &t
	}
}
