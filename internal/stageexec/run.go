package stageexec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"lyricreel/internal/catalog"
	"lyricreel/internal/config"
	"lyricreel/internal/fileutil"
	"lyricreel/internal/ledger"
	"lyricreel/internal/logging"
	"lyricreel/internal/services"
	"lyricreel/internal/stage"
)

// VideoMissingSummary is recorded when the video stage reports success but
// left no file behind.
const VideoMissingSummary = "video file not created"

// Outcome is the terminal result of one track attempt.
type Outcome struct {
	Status      ledger.Outcome
	Artifact    string
	Summary     string
	FailedStage string
	Duration    time.Duration
}

// Succeeded reports whether the track produced its video.
func (o Outcome) Succeeded() bool {
	return o.Status == ledger.OutcomeCompleted
}

// Runner executes the stage pipeline for one track at a time.
type Runner struct {
	stages    []stage.Handler
	workDir   string
	outputDir string
	logger    *slog.Logger
}

// NewRunner builds a runner over stages, executed in the given order.
func NewRunner(cfg *config.Config, stages []stage.Handler, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("stage runner requires config")
	}
	if len(stages) == 0 {
		return nil, errors.New("stage runner requires at least one stage")
	}
	for i, h := range stages {
		if h == nil {
			return nil, fmt.Errorf("stage %d is nil", i)
		}
	}
	return &Runner{
		stages:    stages,
		workDir:   cfg.Paths.WorkDir,
		outputDir: cfg.Paths.OutputDir,
		logger:    logging.NewComponentLogger(logger, "stageexec"),
	}, nil
}

// Paths returns the artifact locations the runner uses for track.
func (r *Runner) Paths(track catalog.Track) stage.ArtifactPaths {
	return stage.PathsFor(r.workDir, r.outputDir, track)
}

// Execute runs every stage for track. The error is non-nil only when ctx was
// canceled; the returned Outcome must then be discarded.
func (r *Runner) Execute(ctx context.Context, album, artist string, track catalog.Track) (Outcome, error) {
	start := time.Now()
	req := stage.Request{
		Album:  album,
		Artist: artist,
		Track:  track,
		Paths:  r.Paths(track),
	}

	// A video left by an earlier attempt must not satisfy the existence check
	// below on behalf of a video stage that wrote nothing.
	if err := os.Remove(req.Paths.Video); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "cannot clear previous video", "stale_video",
			logging.String("path", req.Paths.Video),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the output directory"))
		return Outcome{
			Status:      ledger.OutcomeFailed,
			Summary:     fmt.Sprintf("remove previous video %s: %v", req.Paths.Video, err),
			FailedStage: r.stages[len(r.stages)-1].Name(),
			Duration:    time.Since(start),
		}, nil
	}

	for _, h := range r.stages {
		name := h.Name()
		stageCtx := services.WithStage(ctx, name)
		stageLogger := logging.WithContext(stageCtx, r.logger)
		if aware, ok := h.(stage.LoggerAware); ok {
			aware.SetLogger(stageLogger)
		}

		stageStart := time.Now()
		stageLogger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.Int(logging.FieldPosition, track.Position),
			logging.String("title", track.Title))

		err := runStage(stageCtx, h, req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			stageLogger.Warn("stage interrupted; track stays pending",
				logging.String(logging.FieldEventType, "stage_interrupted"),
				logging.Error(ctxErr),
				logging.String(logging.FieldErrorHint, "rerun to retry this track"),
				logging.String(logging.FieldImpact, "no outcome recorded for the track"))
			return Outcome{}, ctxErr
		}
		if err != nil {
			summary := services.Summary(err)
			stageLogger.Error("stage failed",
				logging.String(logging.FieldEventType, "stage_failure"),
				logging.String("error_message", firstLine(summary)),
				logging.Duration("elapsed", time.Since(stageStart)),
				logging.Error(err))
			return Outcome{
				Status:      ledger.OutcomeFailed,
				Summary:     summary,
				FailedStage: name,
				Duration:    time.Since(start),
			}, nil
		}

		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("elapsed", time.Since(stageStart)))
	}

	exists, err := fileutil.FileExists(req.Paths.Video)
	if err != nil || !exists {
		attrs := []logging.Attr{
			logging.String("expected_path", req.Paths.Video),
			logging.String(logging.FieldErrorHint, "check the video stage command writes {video_path}"),
			logging.String(logging.FieldImpact, "track recorded as failed"),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "video stage reported success without a video", "artifact_missing", attrs...)
		return Outcome{
			Status:      ledger.OutcomeFailed,
			Summary:     VideoMissingSummary,
			FailedStage: r.stages[len(r.stages)-1].Name(),
			Duration:    time.Since(start),
		}, nil
	}

	return Outcome{
		Status:   ledger.OutcomeCompleted,
		Artifact: req.Paths.Video,
		Duration: time.Since(start),
	}, nil
}

// runStage converts a handler panic into an ordinary stage failure.
func runStage(ctx context.Context, h stage.Handler, req stage.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = services.Wrap(services.ErrExternalTool, h.Name(), "execute", fmt.Sprintf("stage panicked: %v", rec), nil)
		}
	}()
	return h.Execute(ctx, req)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
