package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/narabe/internal/config"
)

// New builds the embedder selected by cfg.Provider and wraps it in a cache when
// cfg.CacheSize is positive. A provider that cannot be constructed is an error;
// there is no fallback to another provider.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case config.ProviderONNX:
		e, err = NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
	case config.ProviderOpenAI:
		e, err = NewOpenAIEmbedder(cfg.APIKey, cfg.Dimensions,
			WithOpenAIModel(cfg.Model),
			WithMaxTokens(cfg.MaxTokens),
			WithBaseURL(cfg.BaseURL),
		)
	case config.ProviderMock:
		e = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", cfg.Provider, err)
	}

	logger.Info("embedder ready",
		zap.String("provider", cfg.Provider),
		zap.Int("dimensions", e.Dimensions()),
		zap.Int("cache_size", cfg.CacheSize),
	)
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(e, cfg.CacheSize), nil
	}
	return e, nil
}
