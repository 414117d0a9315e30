package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/pkg/utils"
)

const defaultConfigPath = "/usr/local/etc/narabe/config.yaml"

// localConfigNames are looked up in the working directory before the system config.
var localConfigNames = []string{"narabe.yaml", "narabe.yml", "narabe.toml"}

type commandContext struct {
	configFlag  string
	contextFlag string
	debugFlag   bool

	config     *config.Config
	configPath string
	logger     *zap.Logger
}

// load resolves the configuration and logger once per invocation.
func (c *commandContext) load() error {
	if c.config != nil {
		return nil
	}
	cfg, path, err := loadConfig(c.configFlag)
	if err != nil {
		return err
	}
	if dir := strings.TrimSpace(c.contextFlag); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve context directory: %w", err)
		}
		cfg.Storage.ContextDir = abs
	}
	if c.debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", path),
		zap.String("context_dir", cfg.Storage.ContextDir),
		zap.Bool("debug", cfg.Debug),
	)
	c.config, c.configPath, c.logger = cfg, path, logger
	return nil
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// loadConfig loads config from path. Without an explicit path it uses narabe.yaml
// (or .yml/.toml) from the working directory, then the system config, and falls
// back to built-in defaults when neither exists. Returns the path actually loaded,
// empty for defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	candidates := append([]string{}, localConfigNames...)
	candidates = append(candidates, defaultConfigPath)
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		cfg, err := config.Load(p)
		if err != nil {
			return nil, "", err
		}
		return cfg, p, nil
	}
	cfg, err := config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
