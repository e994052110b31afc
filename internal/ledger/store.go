package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"lyricreel/internal/catalog"
	"lyricreel/internal/fileutil"
	"lyricreel/internal/logging"
	"lyricreel/internal/textutil"
)

const maxNameSlugLen = 32

// PathFor returns the ledger file location for an album. The readable slugs
// can collapse to nothing for non-Latin names, so the name also carries a hash
// of the normalized artist and album.
func PathFor(stateDir, artist, album string) string {
	sum := sha256.Sum256([]byte(textutil.NormalizeTitle(artist) + "\x00" + textutil.NormalizeTitle(album)))
	name := fmt.Sprintf("%s-%s-%s.progress.json",
		nameSlug(artist, "artist"), nameSlug(album, "album"), hex.EncodeToString(sum[:4]))
	return filepath.Join(stateDir, name)
}

func nameSlug(value, fallback string) string {
	slug := textutil.Slug(value)
	if len(slug) > maxNameSlugLen {
		slug = strings.TrimRight(slug[:maxNameSlugLen], "-")
	}
	if slug == "" {
		return fallback
	}
	return slug
}

// Store reads and writes one album ledger while holding its lock.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// Open acquires the album lock beside path. It fails with ErrLocked when
// another process already holds it.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return &Store{
		path:   path,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "ledger"),
		now:    time.Now,
	}, nil
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the album lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Exists reports whether a ledger file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat ledger: %w", err)
}

// Load reads the ledger file. A missing file is reported as fs.ErrNotExist.
func (s *Store) Load() (*Ledger, error) {
	return Read(s.path)
}

// LoadOrCreate returns the existing ledger for the catalog's album, or
// creates and persists a new one. An existing ledger is never recreated.
// A ledger for a different album or with an out-of-range cursor is always
// fatal. When acceptCatalogChange is false a total_tracks mismatch is fatal
// too; otherwise it is logged and total_tracks is kept.
func (s *Store) LoadOrCreate(cat *catalog.Catalog, acceptCatalogChange bool) (*Ledger, bool, error) {
	l, err := s.Load()
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		l = New(cat, s.now())
		if err := s.Save(l); err != nil {
			return nil, false, err
		}
		s.logger.Info("created progress ledger",
			logging.String(logging.FieldEventType, "ledger_created"),
			logging.String("path", s.path),
			logging.Int("total_tracks", l.TotalTracks))
		return l, true, nil
	default:
		return nil, false, err
	}

	if err := l.CheckCatalog(cat); err != nil {
		if !acceptCatalogChange || !errors.Is(err, errTrackCountChanged) {
			return nil, false, err
		}
		logging.WarnWithContext(s.logger, "catalog changed since ledger creation", "ledger_catalog_mismatch",
			logging.Int("ledger_total_tracks", l.TotalTracks),
			logging.Int("catalog_tracks", cat.Len()),
			logging.String(logging.FieldErrorHint, "total_tracks is kept; tracks missing from the catalog are never selected"),
			logging.String(logging.FieldImpact, "completion is judged against the current catalog"))
	}
	return l, false, nil
}

// Save validates the ledger and rewrites the file atomically.
func (s *Store) Save(l *Ledger) error {
	l.UpdatedAt = s.now().UTC()
	if err := l.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Remove deletes the ledger file. Missing files are not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove ledger: %w", err)
	}
	return nil
}

// Read loads and validates a ledger without taking the lock. It is meant for
// read-only views such as status and merge.
func Read(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ledger %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrCorruptLedger, path, err)
	}
	var l Ledger
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&l); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrCorruptLedger, path, err)
	}
	if l.CompletedTracks == nil {
		l.CompletedTracks = []Record{}
	}
	if l.FailedTracks == nil {
		l.FailedTracks = []Record{}
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &l, nil
}
