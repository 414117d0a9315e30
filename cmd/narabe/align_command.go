package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/narabe/internal/cli"
	"github.com/hyperjump/narabe/internal/engine"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		windowSize int
		output     string
	)
	cmd := &cobra.Command{
		Use:   "align <left> <right>",
		Short: "Align two documents, resuming from stored checkpoints",
		Long: "Align splits both documents into sentences and aligns them window by window.\n" +
			"Every window is checkpointed in the context directory; rerunning the same\n" +
			"command after an interruption continues where it stopped.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg := ctx.config
			if windowSize > 0 {
				if windowSize < 2 {
					return fmt.Errorf("--window must be at least 2, got %d", windowSize)
				}
				cfg.Alignment.WindowSize = windowSize
			}

			e, err := engine.Open(cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer e.Close()

			rep, err := e.Align(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return cli.WriteReport(cmd.OutOrStdout(), rep, format)
		},
	}
	cmd.Flags().IntVarP(&windowSize, "window", "w", 0, "Units per side in one window (overrides config)")
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "Output format: text or json")
	return cmd
}

func newStitchCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stitch <left> <right>",
		Short: "Rebuild the result from stored checkpoints without aligning",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			e, err := engine.OpenStore(ctx.config, ctx.logger)
			if err != nil {
				return err
			}
			defer e.Close()

			rep, err := e.Assemble(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return cli.WriteReport(cmd.OutOrStdout(), rep, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "Output format: text or json")
	return cmd
}
