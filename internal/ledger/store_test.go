package ledger

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lyricreel/internal/catalog"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	store.now = func() time.Time { return fixedNow }
	return store
}

func TestPathFor(t *testing.T) {
	got := PathFor("/state", "The Beatles", "Abbey Road")
	if filepath.Dir(got) != "/state" {
		t.Fatalf("PathFor dir = %q", filepath.Dir(got))
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, "the-beatles-abbey-road-") || !strings.HasSuffix(base, ".progress.json") {
		t.Fatalf("PathFor base = %q", base)
	}
	if again := PathFor("/state", " the  BEATLES ", "ABBEY ROAD"); again != got {
		t.Fatalf("normalized names must share a ledger: %q vs %q", again, got)
	}
}

func TestPathForNonLatinAlbumsDoNotCollide(t *testing.T) {
	first := PathFor("/state", "坂本龍一", "アルバム")
	second := PathFor("/state", "坂本龍一", "音楽図鑑")
	if first == second {
		t.Fatalf("different albums share ledger %q", first)
	}
	if !strings.HasPrefix(filepath.Base(first), "artist-album-") {
		t.Fatalf("unexpected fallback name %q", filepath.Base(first))
	}
}

func albumCatalog(t *testing.T, artist, album string, titles ...string) *catalog.Catalog {
	t.Helper()
	cat := testCatalog(t, titles...)
	cat.Artist, cat.Album = artist, album
	return cat
}

func TestLoadOrCreateRejectsLedgerOfAnotherAlbum(t *testing.T) {
	dir := t.TempDir()
	first := albumCatalog(t, "坂本龍一", "アルバム", "One", "Two")
	second := albumCatalog(t, "坂本龍一", "音楽図鑑", "One", "Two")

	store := openStore(t, PathFor(dir, first.Artist, first.Album))
	if _, _, err := store.LoadOrCreate(first, false); err != nil {
		t.Fatal(err)
	}
	if _, created, err := store.LoadOrCreate(second, true); !errors.Is(err, ErrAlbumMismatch) || created {
		t.Fatalf("expected ErrAlbumMismatch even when accepting changes, got created=%v err=%v", created, err)
	}

	other := openStore(t, PathFor(dir, second.Artist, second.Album))
	l, created, err := other.LoadOrCreate(second, false)
	if err != nil || !created {
		t.Fatalf("second album should get its own ledger: created=%v err=%v", created, err)
	}
	if l.Album != "音楽図鑑" {
		t.Fatalf("ledger album = %q", l.Album)
	}
}

func TestLoadOrCreateCreatesOnce(t *testing.T) {
	cat := testCatalog(t, "One", "Two", "Three")
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)

	l, created, err := store.LoadOrCreate(cat, false)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if !created || l.TotalTracks != 3 {
		t.Fatalf("created=%v total=%d", created, l.TotalTracks)
	}
	if err := l.RecordCompleted(cat.Tracks[0], "/out/one.mp4", fixedNow); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, created, err := store.LoadOrCreate(cat, false)
	if err != nil {
		t.Fatalf("LoadOrCreate again: %v", err)
	}
	if created {
		t.Fatal("existing ledger must not be recreated")
	}
	if len(again.CompletedTracks) != 1 || again.Cursor() != 1 {
		t.Fatalf("reloaded ledger lost state: %+v", again)
	}
}

func TestSaveWritesDocumentedFields(t *testing.T) {
	cat := testCatalog(t, "One")
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)
	l, _, err := store.LoadOrCreate(cat, false)
	if err != nil {
		t.Fatal(err)
	}
	l.SetCurrent(0, cat.Tracks[0])
	if err := store.Save(l); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"schema_version", "album", "artist", "total_tracks", "completed_tracks", "failed_tracks", "current_track_index", "current_track", "status", "created_at", "updated_at"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("ledger file missing %q:\n%s", key, data)
		}
	}
	if doc["status"] != "pending" {
		t.Fatalf("unexpected status %v", doc["status"])
	}
}

func TestSaveRefusesInvalidLedger(t *testing.T) {
	cat := testCatalog(t, "One")
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)
	l := New(cat, fixedNow)
	l.Status = "bogus"
	if err := store.Save(l); !errors.Is(err, ErrCorruptLedger) {
		t.Fatalf("expected ErrCorruptLedger, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("invalid ledger should not be written: %v", err)
	}
}

func TestLoadOrCreateCatalogMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)
	if _, _, err := store.LoadOrCreate(testCatalog(t, "One", "Two"), false); err != nil {
		t.Fatal(err)
	}

	bigger := testCatalog(t, "One", "Two", "Three")
	if _, _, err := store.LoadOrCreate(bigger, false); !errors.Is(err, ErrCatalogMismatch) {
		t.Fatalf("expected ErrCatalogMismatch, got %v", err)
	}

	l, created, err := store.LoadOrCreate(bigger, true)
	if err != nil {
		t.Fatalf("accepting catalog change: %v", err)
	}
	if created || l.TotalTracks != 2 {
		t.Fatalf("total_tracks must stay fixed: created=%v total=%d", created, l.TotalTracks)
	}
}

func TestLoadOrCreateRejectsCursorBeyondCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)
	cat := testCatalog(t, "One", "Two")
	l, _, err := store.LoadOrCreate(cat, false)
	if err != nil {
		t.Fatal(err)
	}
	l.CurrentTrackIndex = 40
	if err := store.Save(l); err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.LoadOrCreate(cat, true); !errors.Is(err, ErrCorruptLedger) {
		t.Fatalf("expected ErrCorruptLedger, got %v", err)
	}
}

func TestReadCorruptFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "not json"},
		{"unknown field", `{"schema_version":1,"album":"A","artist":"B","total_tracks":1,"status":"pending","surprise":true}`},
		{"bad status", `{"schema_version":1,"album":"A","artist":"B","total_tracks":1,"status":"done"}`},
		{"old schema", `{"schema_version":0,"album":"A","artist":"B","total_tracks":1,"status":"pending"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "album.progress.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Read(path); !errors.Is(err, ErrCorruptLedger) {
				t.Fatalf("expected ErrCorruptLedger, got %v", err)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if errors.Is(err, ErrCorruptLedger) {
		t.Fatal("missing ledger is not corrupt")
	}
}

func TestOpenFailsWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "album.progress.json")
	first := openStore(t, path)

	if _, err := Open(path, nil); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open after release: %v", err)
	}
	_ = second.Close()
}

func TestRemove(t *testing.T) {
	cat := testCatalog(t, "One")
	path := filepath.Join(t.TempDir(), "album.progress.json")
	store := openStore(t, path)
	if _, _, err := store.LoadOrCreate(cat, false); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if exists, err := store.Exists(); err != nil || exists {
		t.Fatalf("exists=%v err=%v", exists, err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
	if !strings.HasSuffix(store.Path(), ".progress.json") {
		t.Fatalf("unexpected path %q", store.Path())
	}
}
