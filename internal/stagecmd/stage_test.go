package stagecmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"lyricreel/internal/catalog"
	"lyricreel/internal/config"
	"lyricreel/internal/services"
	"lyricreel/internal/services/toolrunner"
	"lyricreel/internal/stage"
)

type stubExecutor struct {
	lines []string
	err   error
	calls []toolrunner.Command
}

func (s *stubExecutor) Run(ctx context.Context, cmd toolrunner.Command, onLine func(string)) error {
	s.calls = append(s.calls, cmd)
	for _, line := range s.lines {
		onLine(line)
	}
	return s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Stages.DiagnosticLines = 2
	return &cfg
}

func testRequest(cfg *config.Config) stage.Request {
	track := catalog.Track{Position: 4, Title: "Oh! Darling", SourceHint: "https://example.invalid/v"}
	return stage.Request{
		Album:  "Abbey Road",
		Artist: "The Beatles",
		Track:  track,
		Paths:  stage.PathsFor(cfg.Paths.WorkDir, cfg.Paths.OutputDir, track),
	}
}

func TestCommandExpandsPlaceholders(t *testing.T) {
	cfg := testConfig(t)
	cmdCfg := config.StageCommand{
		Command: "render",
		Args:    []string{"--title={title}", "{artist}", "{album}", "{position}", "{source_hint}", "{lyrics_path}", "{audio_path}", "{video_path}", "{work_dir}", "{output_dir}"},
		Env:     []string{"TRACK={position}"},
	}
	req := testRequest(cfg)
	cmd := New(NameVideo, cmdCfg, cfg).Command(req)

	want := []string{
		"--title=Oh! Darling", "The Beatles", "Abbey Road", "4", "https://example.invalid/v",
		req.Paths.Lyrics, req.Paths.Audio, req.Paths.Video, cfg.Paths.WorkDir, cfg.Paths.OutputDir,
	}
	if strings.Join(cmd.Args, "|") != strings.Join(want, "|") {
		t.Fatalf("args = %v\nwant %v", cmd.Args, want)
	}
	if len(cmd.Env) != 1 || cmd.Env[0] != "TRACK=4" {
		t.Fatalf("env = %v", cmd.Env)
	}
	if cmd.Binary != "render" || cmd.Dir != cfg.Paths.WorkDir {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestExecuteSuccess(t *testing.T) {
	cfg := testConfig(t)
	exec := &stubExecutor{lines: []string{"fetched lyrics"}}
	s := New(NameLyrics, cfg.Stages.Lyrics, cfg, WithExecutor(exec))
	if err := s.Execute(context.Background(), testRequest(cfg)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(exec.calls))
	}
	if exec.calls[0].Args[0] != "fetch_lyrics.py" || exec.calls[0].Args[1] != "Oh! Darling" {
		t.Fatalf("unexpected args %v", exec.calls[0].Args)
	}
}

func TestExecuteFailureCarriesOutputTail(t *testing.T) {
	cfg := testConfig(t)
	exec := &stubExecutor{
		lines: []string{"starting", "calling api", "HTTP 429: quota exceeded"},
		err:   &toolrunner.ExitError{Binary: "python3", Code: 1},
	}
	s := New(NameSynthesis, cfg.Stages.Synthesis, cfg, WithExecutor(exec))
	err := s.Execute(context.Background(), testRequest(cfg))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	summary := services.Summary(err)
	if !strings.HasPrefix(summary, "synthesis: run python3: command failed: python3 exited with status 1") {
		t.Fatalf("unexpected summary %q", summary)
	}
	if !strings.HasSuffix(summary, "calling api\nHTTP 429: quota exceeded") {
		t.Fatalf("summary should end with the last two output lines: %q", summary)
	}
	if strings.Contains(summary, "starting") {
		t.Fatalf("summary kept more than diagnostic_lines: %q", summary)
	}
}

func TestPipelineOrder(t *testing.T) {
	cfg := testConfig(t)
	handlers := Pipeline(cfg)
	var names []string
	for _, h := range handlers {
		names = append(names, h.Name())
	}
	if strings.Join(names, ",") != "lyrics,synthesis,video" {
		t.Fatalf("unexpected pipeline %v", names)
	}
}

func TestHealthCheck(t *testing.T) {
	cfg := testConfig(t)
	ok := New(NameVideo, config.StageCommand{Command: "sh"}, cfg).HealthCheck(context.Background())
	if !ok.Ready {
		t.Fatalf("expected sh to be found: %+v", ok)
	}
	missing := New(NameVideo, config.StageCommand{Command: "lyricreel-missing-binary"}, cfg).HealthCheck(context.Background())
	if missing.Ready || !strings.Contains(missing.Detail, "not found") {
		t.Fatalf("expected missing binary to be unhealthy: %+v", missing)
	}
}

func TestRealCommandFailure(t *testing.T) {
	cfg := testConfig(t)
	cmdCfg := config.StageCommand{Command: "/bin/sh", Args: []string{"-c", "echo 'no lyrics for {title}' >&2; exit 2"}}
	err := New(NameLyrics, cmdCfg, cfg).Execute(context.Background(), testRequest(cfg))
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(services.Summary(err), "no lyrics for Oh! Darling") {
		t.Fatalf("unexpected summary %q", services.Summary(err))
	}
}
