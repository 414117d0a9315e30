package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/narabe/internal/cli"
	"github.com/hyperjump/narabe/internal/config"
	"github.com/hyperjump/narabe/internal/storage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show checkpoints and the last result in the context directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg := ctx.config
			st := cli.Status{
				ContextDir: cfg.Storage.ContextDir,
				Backend:    cfg.Storage.Backend,
				WindowSize: cfg.Alignment.WindowSize,
				Provider:   cfg.Embedding.Provider,
			}

			store, err := storage.NewCheckpointStore(cfg.Storage.Backend, cfg.Storage.ContextDir, cfg.Storage.DatabasePathOrDefault())
			if errors.Is(err, storage.ErrLocked) {
				return fmt.Errorf("context %s is in use by a running alignment", cfg.Storage.ContextDir)
			}
			if err != nil {
				return err
			}
			defer store.Close()

			cps, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			st.Checkpoints = len(cps)
			if len(cps) > 0 {
				st.LastIteration = cps[len(cps)-1].Iteration
			}

			if res, err := storage.ReadResult(cfg.Storage.ContextDir); err == nil {
				st.RunID, st.ResultAt, st.Steps = res.RunID, res.CreatedAt, len(res.Path)
			} else if !errors.Is(err, storage.ErrNotFound) {
				return err
			}

			st.DiskBytes, err = storage.DiskUsageBytes(diskPaths(cfg)...)
			if err != nil {
				return fmt.Errorf("disk usage: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), st, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "Output format: text or json")
	return cmd
}

// diskPaths returns the context directory plus the SQLite database when it lives elsewhere.
func diskPaths(cfg *config.Config) []string {
	paths := []string{cfg.Storage.ContextDir}
	if cfg.Storage.Backend != config.BackendSQLite {
		return paths
	}
	db := cfg.Storage.DatabasePathOrDefault()
	rel, err := filepath.Rel(cfg.Storage.ContextDir, db)
	if err != nil || strings.HasPrefix(rel, "..") {
		paths = append(paths, db)
	}
	return paths
}
