package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact stands in for a rendered stage output at path, creating
// parent directories. Empty content writes a placeholder so the file is never
// zero length.
func WriteArtifact(t testing.TB, path, content string) {
	t.Helper()
	if content == "" {
		content = "artifact"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
