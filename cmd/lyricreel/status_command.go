package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"lyricreel/internal/catalog"
	"lyricreel/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <catalog.json>",
		Short: "Show per-track progress for an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, path, err := ctx.albumLedgerPath(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			l, err := ledger.Read(path)
			if errors.Is(err, fs.ErrNotExist) {
				l = nil
			} else if err != nil {
				return err
			}
			renderAlbumStatus(out, cat, l, path)
			return nil
		},
	}
}

// trackState is a track's position in the lifecycle as seen from the ledger.
func trackState(l *ledger.Ledger, track catalog.Track) (state string, detail string) {
	if l == nil {
		return "pending", ""
	}
	if rec, ok := l.Lookup(track.ID()); ok {
		if rec.Status == ledger.OutcomeFailed {
			return string(rec.Status), firstLine(rec.ErrorSummary)
		}
		return string(rec.Status), rec.ArtifactLocation
	}
	if cur := l.CurrentTrack; cur != nil && cur.TrackID == track.ID() {
		return "in progress", "interrupted attempt; retried on next run"
	}
	return "pending", ""
}

func renderAlbumStatus(out io.Writer, cat *catalog.Catalog, l *ledger.Ledger, path string) {
	p := newPrinter(out)
	p.section(cat.Artist + " - " + cat.Album)

	if l == nil {
		p.println(
			p.line("Ledger", statusWarn, "not created yet ("+path+")"),
			p.line("Progress", statusInfo, fmt.Sprintf("0/%d tracks", cat.Len())),
		)
	} else {
		kind := statusWarn
		switch l.Status {
		case ledger.StatusCompleted:
			kind = statusOK
			if len(l.FailedTracks) > 0 {
				kind = statusError
			}
		case ledger.StatusPending:
			kind = statusInfo
		}
		resolved := len(l.CompletedTracks) + len(l.FailedTracks)
		p.println(
			p.line("Ledger", statusInfo, path),
			p.line("Status", kind, string(l.Status)),
			p.line("Progress", statusInfo, fmt.Sprintf("%d/%d tracks (%d completed, %d failed)",
				resolved, cat.Len(), len(l.CompletedTracks), len(l.FailedTracks))),
			p.line("Updated", statusInfo, l.UpdatedAt.Local().Format("2006-01-02 15:04:05")),
		)
		if l.TotalTracks != cat.Len() {
			p.println(p.line("Catalog", statusWarn,
				fmt.Sprintf("ledger expects %d tracks, catalog lists %d", l.TotalTracks, cat.Len())))
		}
	}

	rows := make([][]string, 0, cat.Len())
	for _, track := range cat.Tracks {
		state, detail := trackState(l, track)
		rows = append(rows, []string{strconv.Itoa(track.Position), track.Title, state, truncate(detail, 80)})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "#", align: alignRight},
		{header: "Title", width: 40},
		{header: "State"},
		{header: "Detail"},
	}, rows))
}
