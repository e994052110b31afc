package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lyricreel/internal/catalog"
	"lyricreel/internal/journal"
	"lyricreel/internal/ledger"
	"lyricreel/internal/logging"
	"lyricreel/internal/notifications"
	"lyricreel/internal/stageexec"
)

// Result is the caller-facing outcome of one invocation.
type Result string

const (
	ResultCompleted             Result = "completed"
	ResultCompletedWithFailures Result = "completed_with_failures"
	ResultPaused                Result = "paused"
)

// Terminal reports whether the album needs no further invocations.
func (r Result) Terminal() bool {
	return r == ResultCompleted || r == ResultCompletedWithFailures
}

// TrackRunner executes the stage pipeline for one track.
type TrackRunner interface {
	Execute(ctx context.Context, album, artist string, track catalog.Track) (stageexec.Outcome, error)
}

// Journal receives run history. Failures are logged and never stop a batch.
type Journal interface {
	StartRun(ctx context.Context, run journal.Run) error
	RecordAttempt(ctx context.Context, attempt journal.Attempt) error
	FinishRun(ctx context.Context, id string, summary journal.RunSummary) error
}

// TrackResult describes one track processed during an invocation.
type TrackResult struct {
	TrackID     string
	Position    int
	Title       string
	Status      ledger.Outcome
	Artifact    string
	Summary     string
	FailedStage string
	Duration    time.Duration
}

// Summary reports an invocation. Completed, Failed and Remaining are album
// totals; Processed and Tracks cover this invocation only.
type Summary struct {
	RunID     string
	Result    Result
	Status    ledger.Status
	Budget    int
	Processed int
	Completed int
	Failed    int
	Remaining int
	Tracks    []TrackResult
}

// Options wires a Controller. Journal and Notifier are optional.
type Options struct {
	Catalog    *catalog.Catalog
	Ledger     *ledger.Ledger
	Store      Persister
	Runner     TrackRunner
	Journal    Journal
	Notifier   notifications.Service
	Logger     *slog.Logger
	LedgerPath string
	Now        func() time.Time
}

// Controller runs bounded batches of tracks against one album ledger.
type Controller struct {
	catalog    *catalog.Catalog
	ledger     *ledger.Ledger
	store      Persister
	runner     TrackRunner
	journal    Journal
	notifier   notifications.Service
	logger     *slog.Logger
	ledgerPath string
	now        func() time.Time
	selector   *Selector
}

// NewController validates opts and builds a controller.
func NewController(opts Options) (*Controller, error) {
	switch {
	case opts.Catalog == nil:
		return nil, errors.New("controller requires a catalog")
	case opts.Ledger == nil:
		return nil, errors.New("controller requires a ledger")
	case opts.Store == nil:
		return nil, errors.New("controller requires a ledger store")
	case opts.Runner == nil:
		return nil, errors.New("controller requires a stage runner")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		catalog:    opts.Catalog,
		ledger:     opts.Ledger,
		store:      opts.Store,
		runner:     opts.Runner,
		journal:    opts.Journal,
		notifier:   opts.Notifier,
		logger:     logging.NewComponentLogger(opts.Logger, "workflow"),
		ledgerPath: opts.LedgerPath,
		now:        now,
		selector:   NewSelector(opts.Catalog, opts.Store),
	}, nil
}

// Run processes at most budget tracks. A nil error means the ledger was
// persisted with either Completed or Paused status; the Summary says which.
// Cancelling ctx mid-track leaves that track pending and returns ctx's error.
func (c *Controller) Run(ctx context.Context, budget int) (Summary, error) {
	if budget < 1 {
		return Summary{}, fmt.Errorf("budget must be at least 1, got %d", budget)
	}

	runID := journal.NewRunID()
	ctx = c.runContext(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)
	startStatus := c.ledger.Status
	summary := Summary{RunID: runID, Budget: budget}

	c.journalStart(ctx, runID, budget)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("budget", budget),
		logging.Int("pending", len(c.ledger.Pending(c.catalog))),
		logging.String("ledger_status", string(startStatus)))

	for summary.Processed < budget {
		track, ok, err := c.selector.Next(c.ledger)
		if err != nil {
			return c.abort(ctx, summary, fmt.Errorf("select next track: %w", err))
		}
		if !ok {
			break
		}

		result, err := c.processTrack(ctx, runID, track)
		if err != nil {
			return c.abort(ctx, summary, err)
		}
		summary.Processed++
		summary.Tracks = append(summary.Tracks, result)
	}

	return c.finish(ctx, summary, startStatus)
}

func (c *Controller) processTrack(ctx context.Context, runID string, track catalog.Track) (TrackResult, error) {
	trackCtx := trackContext(ctx, track)
	logger := logging.WithContext(trackCtx, c.logger)
	started := c.now()

	logger.Info("track started",
		logging.String(logging.FieldEventType, "track_start"),
		logging.Int(logging.FieldPosition, track.Position),
		logging.String("title", track.Title))

	outcome, err := c.runner.Execute(trackCtx, c.catalog.Album, c.catalog.Artist, track)
	if err != nil {
		c.journalAttempt(ctx, journal.Attempt{
			RunID:     runID,
			TrackID:   track.ID(),
			Position:  track.Position,
			Title:     track.Title,
			Outcome:   journal.OutcomeInterrupted,
			Summary:   err.Error(),
			StartedAt: started,
			Duration:  c.now().Sub(started),
		})
		return TrackResult{}, fmt.Errorf("track %d interrupted: %w", track.Position, err)
	}

	result := TrackResult{
		TrackID:     track.ID(),
		Position:    track.Position,
		Title:       track.Title,
		Status:      outcome.Status,
		Artifact:    outcome.Artifact,
		Summary:     outcome.Summary,
		FailedStage: outcome.FailedStage,
		Duration:    outcome.Duration,
	}

	if outcome.Succeeded() {
		err = c.ledger.RecordCompleted(track, outcome.Artifact, c.now())
	} else {
		err = c.ledger.RecordFailed(track, outcome.Summary, c.now())
	}
	if err != nil {
		return TrackResult{}, fmt.Errorf("record track %d: %w", track.Position, err)
	}
	if err := c.store.Save(c.ledger); err != nil {
		return TrackResult{}, fmt.Errorf("persist track %d outcome: %w", track.Position, err)
	}

	c.journalAttempt(ctx, journal.Attempt{
		RunID:       runID,
		TrackID:     result.TrackID,
		Position:    result.Position,
		Title:       result.Title,
		Outcome:     string(result.Status),
		FailedStage: result.FailedStage,
		Summary:     result.Summary,
		Artifact:    result.Artifact,
		StartedAt:   started,
		Duration:    result.Duration,
	})

	if outcome.Succeeded() {
		logger.Info("track completed",
			logging.String(logging.FieldEventType, "track_complete"),
			logging.String("artifact", outcome.Artifact),
			logging.Duration("elapsed", outcome.Duration))
	} else {
		logger.Error("track failed",
			logging.String(logging.FieldEventType, "track_failed"),
			logging.String("failed_stage", outcome.FailedStage),
			logging.String("error_message", firstLine(outcome.Summary)),
			logging.Alert("track_failure"),
			logging.String(logging.FieldErrorHint, "inspect the stage output, then reset the ledger to retry"))
		c.notifyTrackFailed(trackCtx, track, outcome)
	}
	return result, nil
}

// finish applies the completion predicate, persists the final status and
// reports it.
func (c *Controller) finish(ctx context.Context, summary Summary, startStatus ledger.Status) (Summary, error) {
	logger := logging.WithContext(ctx, c.logger)

	status := ledger.StatusPaused
	if c.ledger.AllResolved(c.catalog) {
		status = ledger.StatusCompleted
	}
	c.ledger.SetStatus(status)
	if err := c.store.Save(c.ledger); err != nil {
		return c.abort(ctx, summary, fmt.Errorf("persist ledger status: %w", err))
	}

	summary = c.fillTotals(summary)
	c.journalFinish(ctx, summary.RunID, summary, string(summary.Result))

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.String("result", string(summary.Result)),
		logging.Int("processed", summary.Processed),
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("remaining", summary.Remaining))

	switch {
	case status == ledger.StatusCompleted && startStatus != ledger.StatusCompleted:
		c.notifyAlbumCompleted(ctx, summary)
	case status == ledger.StatusPaused:
		c.notifyBatchPaused(ctx, summary)
	}
	return summary, nil
}

// abort stops the batch on an interruption or a persistence failure. The
// ledger is marked Paused on a best-effort basis; current_track stays set so
// the next invocation resumes the same track.
func (c *Controller) abort(ctx context.Context, summary Summary, cause error) (Summary, error) {
	logger := logging.WithContext(ctx, c.logger)

	c.ledger.SetStatus(ledger.StatusPaused)
	if err := c.store.Save(c.ledger); err != nil {
		logger.Error("failed to persist paused status",
			logging.String(logging.FieldEventType, "ledger_save_failed"),
			logging.Error(err))
	}

	summary = c.fillTotals(summary)
	journalResult := "error"
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		journalResult = journal.OutcomeInterrupted
		logging.WarnWithContext(logger, "batch interrupted", "batch_interrupted",
			logging.Error(cause),
			logging.Int("processed", summary.Processed),
			logging.String(logging.FieldErrorHint, "rerun to resume from the interrupted track"),
			logging.String(logging.FieldImpact, "in-flight track left pending"))
	} else {
		logging.ErrorWithContext(logger, "batch aborted", "batch_aborted",
			logging.Error(cause),
			logging.Int("processed", summary.Processed),
			logging.String(logging.FieldErrorHint, "check the ledger file and state directory"))
	}
	c.journalFinish(ctx, summary.RunID, summary, journalResult)
	return summary, cause
}

func (c *Controller) fillTotals(summary Summary) Summary {
	summary.Status = c.ledger.Status
	summary.Completed = len(c.ledger.CompletedTracks)
	summary.Failed = len(c.ledger.FailedTracks)
	summary.Remaining = len(c.ledger.Pending(c.catalog))
	switch {
	case c.ledger.Status != ledger.StatusCompleted:
		summary.Result = ResultPaused
	case summary.Failed > 0:
		summary.Result = ResultCompletedWithFailures
	default:
		summary.Result = ResultCompleted
	}
	return summary
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
