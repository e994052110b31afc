package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lyricreel/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var album string
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent batch runs, or the track attempts of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				return renderRunAttempts(cmd, out, store, id)
			}

			runs, err := store.ListRuns(cmd.Context(), album, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				result := run.Result
				if !run.Finished() {
					result = "running"
				}
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Artist + " - " + run.Album,
					strconv.Itoa(run.Budget),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Completed),
					strconv.Itoa(run.Failed),
					result,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Run"},
				{header: "Started"},
				{header: "Album", width: 40},
				{header: "Budget", align: alignRight},
				{header: "Processed", align: alignRight},
				{header: "Completed", align: alignRight},
				{header: "Failed", align: alignRight},
				{header: "Result"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&album, "album", "", "Only show runs for this album title")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the track attempts of a run id")
	return cmd
}

func renderRunAttempts(cmd *cobra.Command, out io.Writer, store *journal.Store, id string) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}
	attempts, err := store.ListAttempts(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s: %s - %s, result %s\n", run.ID, run.Artist, run.Album, valueOr(run.Result, "running"))
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.Artifact
		if a.Summary != "" {
			detail = firstLine(a.Summary)
		}
		rows = append(rows, []string{
			strconv.Itoa(a.Position),
			a.Title,
			a.Outcome,
			valueOr(a.FailedStage, "-"),
			a.Duration.Round(time.Second).String(),
			truncate(detail, 70),
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "#", align: alignRight},
		{header: "Title", width: 40},
		{header: "Outcome"},
		{header: "Stage"},
		{header: "Time", align: alignRight},
		{header: "Detail"},
	}, rows))
	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
