package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lyricreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories are created so preflight checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.OutputDir = filepath.Join(base, "outputs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	return builder.cfg
}

// WithMaxTracks sets the per-invocation track budget.
func WithMaxTracks(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.MaxTracks = n
	}
}

// WithStageScript points a stage at /bin/sh running script. The script sees
// the track through LYRICREEL_* environment variables.
func WithStageScript(stageName, script string) ConfigOption {
	return func(b *configBuilder) {
		cmd := config.StageCommand{
			Command: "/bin/sh",
			Args:    []string{"-c", script},
			Env: []string{
				"LYRICREEL_TITLE={title}",
				"LYRICREEL_POSITION={position}",
				"LYRICREEL_LYRICS={lyrics_path}",
				"LYRICREEL_AUDIO={audio_path}",
				"LYRICREEL_VIDEO={video_path}",
			},
		}
		switch stageName {
		case "lyrics":
			b.cfg.Stages.Lyrics = cmd
		case "synthesis":
			b.cfg.Stages.Synthesis = cmd
		case "video":
			b.cfg.Stages.Video = cmd
		default:
			b.t.Fatalf("unknown stage %q", stageName)
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"python3", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
