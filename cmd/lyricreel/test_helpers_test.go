package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricreel/internal/catalog"
	"lyricreel/internal/config"
	"lyricreel/internal/ledger"
	"lyricreel/internal/testsupport"
)

type cliTestEnv struct {
	cfg         *config.Config
	cat         *catalog.Catalog
	configPath  string
	catalogPath string
	ledgerPath  string
}

// setupCLITestEnv writes a config whose stages are shell scripts and a
// three-track catalog. The synthesis stage fails for "Something".
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithMaxTracks(2),
		testsupport.WithStageScript("lyrics", `printf 'la la la\n' > "$LYRICREEL_LYRICS"`),
		testsupport.WithStageScript("synthesis", `if [ "$LYRICREEL_TITLE" = "Something" ]; then echo "model crashed" >&2; exit 3; fi; printf 'audio' > "$LYRICREEL_AUDIO"`),
		testsupport.WithStageScript("video", `printf 'video' > "$LYRICREEL_VIDEO"`),
	)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	configPath := filepath.Join(base, "lyricreel.toml")
	writeTestConfig(t, configPath, cfg)

	cat := testsupport.NewCatalog(t, "Abbey Road", "The Beatles", "Come Together", "Something", "Oh! Darling")
	return &cliTestEnv{
		cfg:         cfg,
		cat:         cat,
		configPath:  configPath,
		catalogPath: testsupport.WriteCatalog(t, base, cat),
		ledgerPath:  ledger.PathFor(cfg.Paths.StateDir, cat.Artist, cat.Album),
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
