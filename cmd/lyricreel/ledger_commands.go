package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lyricreel/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Progress ledger maintenance",
	}
	ledgerCmd.AddCommand(newLedgerPathCommand(ctx))
	ledgerCmd.AddCommand(newLedgerResetCommand(ctx))
	return ledgerCmd
}

func newLedgerPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path <catalog.json>",
		Short: "Print the ledger file location for an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := ctx.albumLedgerPath(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newLedgerResetCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset <catalog.json>",
		Short: "Delete an album's ledger so every track is processed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, path, err := ctx.albumLedgerPath(args[0])
			if err != nil {
				return err
			}
			if !confirm {
				return fmt.Errorf("refusing to delete %s without --yes", path)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ledger.Open(path, logger)
			if err != nil {
				if errors.Is(err, ledger.ErrLocked) {
					return fmt.Errorf("a run is in progress for %s - %s: %w", cat.Artist, cat.Album, err)
				}
				return err
			}
			defer store.Close()

			exists, err := store.Exists()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "No ledger at %s\n", path)
				return nil
			}
			if err := store.Remove(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Confirm deletion")
	return cmd
}
