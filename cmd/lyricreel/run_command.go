package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lyricreel/internal/catalog"
	"lyricreel/internal/journal"
	"lyricreel/internal/ledger"
	"lyricreel/internal/logging"
	"lyricreel/internal/notifications"
	"lyricreel/internal/preflight"
	"lyricreel/internal/stagecmd"
	"lyricreel/internal/stageexec"
	"lyricreel/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var maxTracks int
	var acceptCatalogChange bool

	cmd := &cobra.Command{
		Use:   "run <catalog.json>",
		Short: "Process the next batch of tracks for an album",
		Long: "Process up to --max-tracks pending tracks of the album described by the catalog file.\n" +
			"Exits 0 when every track has a terminal record, 2 when tracks remain, 1 on fatal errors.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			budget := cfg.Batch.MaxTracks
			if cmd.Flags().Changed("max-tracks") {
				budget = maxTracks
			}
			if budget < 1 {
				return fmt.Errorf("--max-tracks must be at least 1, got %d", budget)
			}

			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if failed := preflight.Failed(preflight.RunAll(runCtx, cfg)); len(failed) > 0 {
				parts := make([]string, 0, len(failed))
				for _, r := range failed {
					parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
			}

			ledgerPath := ledger.PathFor(cfg.Paths.StateDir, cat.Artist, cat.Album)
			store, err := ledger.Open(ledgerPath, logger)
			if err != nil {
				if errors.Is(err, ledger.ErrLocked) {
					return fmt.Errorf("another lyricreel run is processing %s - %s: %w", cat.Artist, cat.Album, err)
				}
				return err
			}
			defer store.Close()

			l, created, err := store.LoadOrCreate(cat, acceptCatalogChange)
			if err != nil {
				if errors.Is(err, ledger.ErrCatalogMismatch) && !errors.Is(err, ledger.ErrAlbumMismatch) {
					return fmt.Errorf("%w (rerun with --accept-catalog-change to continue with the new catalog)", err)
				}
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created ledger %s\n", ledgerPath)
			}

			runner, err := stageexec.NewRunner(cfg, stagecmd.Pipeline(cfg, stagecmd.WithLogger(logger)), logger)
			if err != nil {
				return err
			}

			opts := workflow.Options{
				Catalog:    cat,
				Ledger:     l,
				Store:      store,
				Runner:     runner,
				Notifier:   notifications.NewService(cfg),
				Logger:     logger,
				LedgerPath: ledgerPath,
			}
			if js, err := journal.Open(cfg.JournalPath()); err != nil {
				logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
					logging.Error(err),
					logging.String("path", cfg.JournalPath()),
					logging.String(logging.FieldImpact, "this run is not recorded in history"))
			} else {
				defer js.Close()
				opts.Journal = js
			}

			controller, err := workflow.NewController(opts)
			if err != nil {
				return err
			}
			summary, err := controller.Run(runCtx, budget)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					printRunSummary(cmd.OutOrStdout(), cat, summary)
					return &exitError{code: exitIncomplete, message: "interrupted; rerun to resume"}
				}
				return err
			}

			printRunSummary(cmd.OutOrStdout(), cat, summary)
			if !summary.Result.Terminal() {
				return &exitError{code: exitIncomplete}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxTracks, "max-tracks", "n", 0, "Track budget for this invocation (default from config)")
	cmd.Flags().BoolVar(&acceptCatalogChange, "accept-catalog-change", false, "Continue when the catalog track count differs from the ledger")
	return cmd
}

func printRunSummary(out io.Writer, cat *catalog.Catalog, summary workflow.Summary) {
	p := newPrinter(out)
	p.section(cat.Artist + " - " + cat.Album)

	if len(summary.Tracks) > 0 {
		rows := make([][]string, 0, len(summary.Tracks))
		for _, t := range summary.Tracks {
			detail := t.Artifact
			if t.Status == ledger.OutcomeFailed {
				detail = firstLine(t.Summary)
			}
			rows = append(rows, []string{
				strconv.Itoa(t.Position),
				t.Title,
				string(t.Status),
				t.Duration.Round(time.Second).String(),
				truncate(detail, 70),
			})
		}
		fmt.Fprintln(out, renderTable([]column{
			{header: "#", align: alignRight},
			{header: "Title", width: 40},
			{header: "Result"},
			{header: "Time", align: alignRight},
			{header: "Detail"},
		}, rows))
	}

	kind := statusWarn
	switch summary.Result {
	case workflow.ResultCompleted:
		kind = statusOK
	case workflow.ResultCompletedWithFailures:
		kind = statusError
	}
	p.println(
		p.line("Result", kind, string(summary.Result)),
		p.line("This run", statusInfo, fmt.Sprintf("%d of %d budgeted tracks", summary.Processed, summary.Budget)),
		p.line("Album", statusInfo, fmt.Sprintf("%d completed, %d failed, %d remaining", summary.Completed, summary.Failed, summary.Remaining)),
	)
}
