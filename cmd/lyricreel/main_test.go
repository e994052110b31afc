package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricreel/internal/ledger"
	"lyricreel/internal/stage"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{name: "plain error", err: errors.New("boom"), want: exitFatal},
		{name: "incomplete", err: &exitError{code: exitIncomplete}, want: exitIncomplete},
		{name: "wrapped", err: fmt.Errorf("run: %w", &exitError{code: exitIncomplete}), want: exitIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunResumesAcrossInvocations(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "run", env.catalogPath)
	if code := exitCode(err); code != exitIncomplete {
		t.Fatalf("first run exit code %d (err %v)", code, err)
	}
	requireContains(t, out, "paused")
	requireContains(t, out, "1 completed, 1 failed, 1 remaining")

	l, err := ledger.Read(env.ledgerPath)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if l.Status != ledger.StatusPaused || len(l.FailedTracks) != 1 {
		t.Fatalf("ledger after first run: %+v", l)
	}
	requireContains(t, l.FailedTracks[0].ErrorSummary, "model crashed")

	out, err = env.run(t, "run", env.catalogPath)
	if code := exitCode(err); code != exitOK {
		t.Fatalf("second run exit code %d (err %v)", code, err)
	}
	requireContains(t, out, "completed_with_failures")
	requireContains(t, out, "2 completed, 1 failed, 0 remaining")

	l, err = ledger.Read(env.ledgerPath)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if l.Status != ledger.StatusCompleted || len(l.CompletedTracks) != 2 {
		t.Fatalf("ledger after second run: %+v", l)
	}
	video := stage.PathsFor(env.cfg.Paths.WorkDir, env.cfg.Paths.OutputDir, env.cat.Tracks[2]).Video
	if _, err := os.Stat(video); err != nil {
		t.Fatalf("expected video %s: %v", video, err)
	}

	// A completed album stays completed.
	if _, err := env.run(t, "run", env.catalogPath); exitCode(err) != exitOK {
		t.Fatalf("rerun of completed album: %v", err)
	}

	out, err = env.run(t, "status", env.catalogPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "exited with status 3")

	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "The Beatles - Abbey Road")
	requireContains(t, out, "completed_with_failures")
}

func TestRunMaxTracksFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "run", env.catalogPath, "--max-tracks", "3")
	if code := exitCode(err); code != exitOK {
		t.Fatalf("exit code %d (err %v)", code, err)
	}
	requireContains(t, out, "3 of 3 budgeted tracks")
}

func TestRunFatalErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.run(t, "run", filepath.Join(t.TempDir(), "missing.json"))
	if code := exitCode(err); code != exitFatal {
		t.Fatalf("missing catalog exit code %d", code)
	}

	if err := os.WriteFile(env.ledgerPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = env.run(t, "run", env.catalogPath)
	if !errors.Is(err, ledger.ErrCorruptLedger) || exitCode(err) != exitFatal {
		t.Fatalf("corrupt ledger: %v", err)
	}
}

func TestStatusBeforeFirstRun(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "status", env.catalogPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not created yet")
	requireContains(t, out, "pending")
}

func TestCatalogValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"catalog", "validate", env.catalogPath})
	if err != nil {
		t.Fatalf("catalog validate: %v", err)
	}
	requireContains(t, out, "The Beatles - Abbey Road: 3 tracks")
	requireContains(t, out, env.cat.Tracks[1].ID())
	requireContains(t, out, "Catalog valid")

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"album":"x","artist":"y","tracks":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, []string{"catalog", "validate", bad}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLedgerPathAndReset(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "ledger", "path", env.catalogPath)
	if err != nil {
		t.Fatalf("ledger path: %v", err)
	}
	requireContains(t, out, env.ledgerPath)

	if _, err := env.run(t, "run", env.catalogPath); exitCode(err) != exitIncomplete {
		t.Fatalf("run: %v", err)
	}
	if _, err := env.run(t, "ledger", "reset", env.catalogPath); err == nil {
		t.Fatal("reset without --yes must fail")
	}
	out, err = env.run(t, "ledger", "reset", env.catalogPath, "--yes")
	if err != nil {
		t.Fatalf("ledger reset: %v", err)
	}
	requireContains(t, out, "Removed")
	if _, err := os.Stat(env.ledgerPath); !os.IsNotExist(err) {
		t.Fatalf("ledger still present: %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Tracks per run: 2")
	requireContains(t, out, "Stage lyrics:")

	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.StateDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error when config exists")
	}
}

func TestDoctorReportsHealthyEnvironment(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "All checks passed")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestLogsFiltersByRunAndTrack(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := env.cfg.LogFilePath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	content := strings.Join([]string{
		"2026-01-02T03:04:05Z INFO workflow: batch started run_id=run-1",
		"2026-01-02T03:04:06Z ERROR workflow: track failed run_id=run-1 track_id=002-something-aa",
		"2026-01-02T03:05:00Z INFO workflow: batch started run_id=run-2",
		"",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := env.run(t, "logs", "--run", "run-1")
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	requireContains(t, out, "track failed")
	if strings.Contains(out, "run-2") {
		t.Fatalf("run filter leaked other run:\n%s", out)
	}

	out, err = env.run(t, "logs", "--track", "002-something-aa", "-n", "5")
	if err != nil {
		t.Fatalf("logs --track: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), "\n") != 0 {
		t.Fatalf("expected a single line, got:\n%s", out)
	}

	out, err = env.run(t, "logs", "--run", "missing")
	if err != nil {
		t.Fatalf("logs --run missing: %v", err)
	}
	requireContains(t, out, "No matching log lines")
}
