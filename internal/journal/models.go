package journal

import (
	"database/sql"
	"errors"
	"time"
)

// Attempt outcomes beyond the ledger's completed/failed.
const OutcomeInterrupted = "interrupted"

// Run is one batch invocation.
type Run struct {
	ID         string
	Album      string
	Artist     string
	LedgerPath string
	Budget     int
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     string
	Processed  int
	Completed  int
	Failed     int
}

// Finished reports whether the invocation recorded a result.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// RunSummary is the final state written by FinishRun.
type RunSummary struct {
	Result     string
	Processed  int
	Completed  int
	Failed     int
	FinishedAt time.Time
}

// Attempt is one track execution inside a run.
type Attempt struct {
	ID          int64
	RunID       string
	TrackID     string
	Position    int
	Title       string
	Outcome     string
	FailedStage string
	Summary     string
	Artifact    string
	StartedAt   time.Time
	Duration    time.Duration
}

const runColumns = "id, album, artist, ledger_path, budget, started_at, finished_at, result, processed, completed, failed"

const attemptColumns = "id, run_id, track_id, position, title, outcome, failed_stage, summary, artifact, started_at, duration_ms"

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		result      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Album, &run.Artist, &run.LedgerPath, &run.Budget,
		&startedRaw, &finishedRaw, &result, &run.Processed, &run.Completed, &run.Failed); err != nil {
		return Run{}, err
	}
	run.Result = result.String
	if started, err := parseTime(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTime(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanAttempt(row scanner) (Attempt, error) {
	var (
		attempt     Attempt
		failedStage sql.NullString
		summary     sql.NullString
		artifact    sql.NullString
		startedRaw  string
		durationMS  int64
	)
	if err := row.Scan(&attempt.ID, &attempt.RunID, &attempt.TrackID, &attempt.Position, &attempt.Title,
		&attempt.Outcome, &failedStage, &summary, &artifact, &startedRaw, &durationMS); err != nil {
		return Attempt{}, err
	}
	attempt.FailedStage = failedStage.String
	attempt.Summary = summary.String
	attempt.Artifact = artifact.String
	attempt.Duration = time.Duration(durationMS) * time.Millisecond
	if started, err := parseTime(startedRaw); err == nil {
		attempt.StartedAt = started
	}
	return attempt, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
