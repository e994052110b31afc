package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricreel/internal/ledger"
	"lyricreel/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <catalog.json>",
		Short: "Concatenate completed track videos into a full-album video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			_, path, err := ctx.albumLedgerPath(args[0])
			if err != nil {
				return err
			}
			l, err := ledger.Read(path)
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}

			result, err := merge.New(cfg, nil, logger).Merge(cmd.Context(), l)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged %d track videos into %s\n", len(result.Inputs), result.Output)
			for _, rec := range result.Skipped {
				fmt.Fprintf(out, "Skipped track %d (%s): %s missing\n", rec.Position, rec.Title, rec.ArtifactLocation)
			}
			return nil
		},
	}
}
