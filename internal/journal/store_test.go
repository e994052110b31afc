package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	id := NewRunID()
	if err := store.StartRun(ctx, Run{ID: id, Album: "Abbey Road", Artist: "The Beatles", LedgerPath: "/state/x.json", Budget: 2, StartedAt: started}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	run, err := store.GetRun(ctx, id)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v %v", run, err)
	}
	if run.Finished() || run.Budget != 2 || !run.StartedAt.Equal(started) {
		t.Fatalf("unexpected open run %+v", run)
	}

	attempts := []Attempt{
		{RunID: id, TrackID: "001-a", Position: 1, Title: "A", Outcome: "completed", Artifact: "/out/a.mp4", Duration: 1500 * time.Millisecond},
		{RunID: id, TrackID: "002-b", Position: 2, Title: "B", Outcome: "failed", FailedStage: "synthesis", Summary: "quota"},
	}
	for _, a := range attempts {
		if err := store.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}

	if err := store.FinishRun(ctx, id, RunSummary{Result: "paused", Processed: 2, Completed: 1, Failed: 1, FinishedAt: started.Add(time.Minute)}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err = store.GetRun(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !run.Finished() || run.Result != "paused" || run.Processed != 2 || run.Completed != 1 || run.Failed != 1 {
		t.Fatalf("unexpected finished run %+v", run)
	}

	got, err := store.ListAttempts(ctx, id)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(got))
	}
	if got[0].Artifact != "/out/a.mp4" || got[0].Duration != 1500*time.Millisecond || got[0].FailedStage != "" {
		t.Fatalf("unexpected first attempt %+v", got[0])
	}
	if got[1].FailedStage != "synthesis" || got[1].Summary != "quota" {
		t.Fatalf("unexpected second attempt %+v", got[1])
	}
}

func TestListRunsNewestFirstAndFiltered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	runs := []Run{
		{ID: "r1", Album: "Abbey Road", Artist: "The Beatles", Budget: 2, StartedAt: base},
		{ID: "r2", Album: "Let It Be", Artist: "The Beatles", Budget: 2, StartedAt: base.Add(time.Hour)},
		{ID: "r3", Album: "Abbey Road", Artist: "The Beatles", Budget: 2, StartedAt: base.Add(2*time.Hour + 500*time.Millisecond)},
	}
	for _, r := range runs {
		if err := store.StartRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r3" || all[2].ID != "r1" {
		t.Fatalf("unexpected order: %+v", all)
	}

	abbey, err := store.ListRuns(ctx, "Abbey Road", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(abbey) != 1 || abbey[0].ID != "r3" {
		t.Fatalf("unexpected filtered runs: %+v", abbey)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	if err := store.FinishRun(context.Background(), "missing", RunSummary{Result: "paused"}); err == nil {
		t.Fatal("expected error for unknown run")
	}
	run, err := store.GetRun(context.Background(), "missing")
	if err != nil || run != nil {
		t.Fatalf("expected nil run, got %+v %v", run, err)
	}
}

func TestStartRunRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.StartRun(context.Background(), Run{Album: "A"}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.StartRun(context.Background(), Run{ID: "r1", Album: "A", Artist: "B", Budget: 1}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), "", 10)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected 1 run after reopen, got %d (%v)", len(runs), err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b || len(a) != 36 {
		t.Fatalf("unexpected run ids %q %q", a, b)
	}
}
