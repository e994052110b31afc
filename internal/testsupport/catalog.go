package testsupport

import (
	"path/filepath"
	"testing"

	"lyricreel/internal/catalog"
)

// NewCatalog builds a validated catalog with tracks numbered from 1.
func NewCatalog(t testing.TB, album, artist string, titles ...string) *catalog.Catalog {
	t.Helper()

	cat := &catalog.Catalog{Album: album, Artist: artist, TrackCount: len(titles)}
	for i, title := range titles {
		cat.Tracks = append(cat.Tracks, catalog.Track{Position: i + 1, Title: title})
	}
	if err := cat.Validate(); err != nil {
		t.Fatalf("invalid test catalog: %v", err)
	}
	return cat
}

// WriteCatalog saves cat as catalog.json under dir and returns its path.
func WriteCatalog(t testing.TB, dir string, cat *catalog.Catalog) string {
	t.Helper()

	path := filepath.Join(dir, "catalog.json")
	if err := cat.Save(path); err != nil {
		t.Fatalf("save catalog: %v", err)
	}
	return path
}
