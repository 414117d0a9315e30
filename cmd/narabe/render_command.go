package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/narabe/internal/render"
	"github.com/hyperjump/narabe/internal/storage"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		format  string
		columns int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the aligned blocks of the last result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if !render.ValidColumns(columns) {
				return fmt.Errorf("--columns must be 1, 2 or 3, got %d", columns)
			}
			res, err := storage.ReadResult(ctx.config.Storage.ContextDir)
			if err != nil {
				return fmt.Errorf("no result to render (run `narabe align` first): %w", err)
			}
			return render.Write(cmd.OutOrStdout(), f, render.Rows(res), columns)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatAuto), "Output format: auto, table, json or html")
	cmd.Flags().IntVar(&columns, "columns", 2, "Column layout for html output (1, 2 or 3)")
	return cmd
}
