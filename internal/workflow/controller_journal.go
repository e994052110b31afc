package workflow

import (
	"context"

	"lyricreel/internal/journal"
	"lyricreel/internal/ledger"
	"lyricreel/internal/logging"
)

// Journal writes must outlive a cancelled run so interrupted attempts are
// still recorded.
func (c *Controller) journalContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (c *Controller) journalStart(ctx context.Context, runID string, budget int) {
	if c.journal == nil {
		return
	}
	err := c.journal.StartRun(c.journalContext(ctx), journal.Run{
		ID:         runID,
		Album:      c.catalog.Album,
		Artist:     c.catalog.Artist,
		LedgerPath: c.ledgerPath,
		Budget:     budget,
		StartedAt:  c.now(),
	})
	if err != nil {
		c.journalWarn(ctx, "run journal start failed", err)
	}
}

func (c *Controller) journalAttempt(ctx context.Context, attempt journal.Attempt) {
	if c.journal == nil {
		return
	}
	if err := c.journal.RecordAttempt(c.journalContext(ctx), attempt); err != nil {
		c.journalWarn(ctx, "run journal attempt failed", err)
	}
}

func (c *Controller) journalFinish(ctx context.Context, runID string, summary Summary, result string) {
	if c.journal == nil {
		return
	}
	err := c.journal.FinishRun(c.journalContext(ctx), runID, journal.RunSummary{
		Result:     result,
		Processed:  summary.Processed,
		Completed:  countTracks(summary.Tracks, true),
		Failed:     countTracks(summary.Tracks, false),
		FinishedAt: c.now(),
	})
	if err != nil {
		c.journalWarn(ctx, "run journal finish failed", err)
	}
}

func (c *Controller) journalWarn(ctx context.Context, msg string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), msg, "journal_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the journal database under the state directory"),
		logging.String(logging.FieldImpact, "run history is incomplete; the ledger is unaffected"))
}

// countTracks counts this invocation's completed (or failed) tracks.
func countTracks(tracks []TrackResult, completed bool) int {
	n := 0
	for _, t := range tracks {
		if (t.Status == ledger.OutcomeCompleted) == completed {
			n++
		}
	}
	return n
}
