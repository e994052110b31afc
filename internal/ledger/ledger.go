package ledger

import (
	"errors"
	"fmt"
	"time"

	"lyricreel/internal/catalog"
	"lyricreel/internal/textutil"
)

// SchemaVersion is the ledger file format understood by this build.
const SchemaVersion = 1

// Status is the album-level batch state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Outcome is the terminal result recorded for a track.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Record is one terminal track entry.
type Record struct {
	TrackID          string    `json:"track_id"`
	Position         int       `json:"position"`
	Title            string    `json:"title"`
	Status           Outcome   `json:"status"`
	ArtifactLocation string    `json:"artifact_location,omitempty"`
	ErrorSummary     string    `json:"error_summary,omitempty"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// CurrentTrack identifies the track a run was working on when the ledger was
// last written.
type CurrentTrack struct {
	TrackID  string `json:"track_id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	// Index is the catalog index the track was selected at.
	Index int `json:"index"`
}

// Ledger is the durable progress state of one album.
type Ledger struct {
	SchemaVersion     int           `json:"schema_version"`
	Album             string        `json:"album"`
	Artist            string        `json:"artist"`
	TotalTracks       int           `json:"total_tracks"`
	CompletedTracks   []Record      `json:"completed_tracks"`
	FailedTracks      []Record      `json:"failed_tracks"`
	CurrentTrackIndex int           `json:"current_track_index"`
	CurrentTrack      *CurrentTrack `json:"current_track"`
	Status            Status        `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// ErrAlreadyResolved is returned when recording a second outcome for a track.
var ErrAlreadyResolved = errors.New("track already has a terminal record")

// New derives a fresh ledger from the catalog.
func New(cat *catalog.Catalog, now time.Time) *Ledger {
	now = now.UTC()
	return &Ledger{
		SchemaVersion:   SchemaVersion,
		Album:           cat.Album,
		Artist:          cat.Artist,
		TotalTracks:     cat.Len(),
		CompletedTracks: []Record{},
		FailedTracks:    []Record{},
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Cursor returns the catalog index scanning resumes from.
func (l *Ledger) Cursor() int {
	return l.CurrentTrackIndex
}

// AdvanceCursor moves the cursor forward to index. Lower values are ignored.
func (l *Ledger) AdvanceCursor(index int) {
	if index > l.CurrentTrackIndex {
		l.CurrentTrackIndex = index
	}
}

// IsResolved reports whether the track id has a completed or failed record.
func (l *Ledger) IsResolved(id string) bool {
	_, ok := l.Lookup(id)
	return ok
}

// Lookup returns the terminal record for the track id.
func (l *Ledger) Lookup(id string) (Record, bool) {
	for _, rec := range l.CompletedTracks {
		if rec.TrackID == id {
			return rec, true
		}
	}
	for _, rec := range l.FailedTracks {
		if rec.TrackID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// SetCurrent marks track, found at catalog index, as in flight.
func (l *Ledger) SetCurrent(index int, track catalog.Track) {
	l.CurrentTrack = &CurrentTrack{
		TrackID:  track.ID(),
		Position: track.Position,
		Title:    track.Title,
		Index:    index,
	}
}

// RecordCompleted appends a completed record for track, advances the cursor
// past it, and clears the current track.
func (l *Ledger) RecordCompleted(track catalog.Track, artifact string, now time.Time) error {
	if artifact == "" {
		return fmt.Errorf("record %s: artifact location is required", track.ID())
	}
	rec, err := l.newRecord(track, OutcomeCompleted, now)
	if err != nil {
		return err
	}
	rec.ArtifactLocation = artifact
	l.CompletedTracks = append(l.CompletedTracks, rec)
	l.finish(rec.TrackID)
	return nil
}

// RecordFailed appends a failed record for track, advances the cursor past
// it, and clears the current track.
func (l *Ledger) RecordFailed(track catalog.Track, summary string, now time.Time) error {
	if summary == "" {
		summary = "unknown failure"
	}
	rec, err := l.newRecord(track, OutcomeFailed, now)
	if err != nil {
		return err
	}
	rec.ErrorSummary = summary
	l.FailedTracks = append(l.FailedTracks, rec)
	l.finish(rec.TrackID)
	return nil
}

func (l *Ledger) newRecord(track catalog.Track, outcome Outcome, now time.Time) (Record, error) {
	id := track.ID()
	if l.IsResolved(id) {
		return Record{}, fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}
	return Record{
		TrackID:    id,
		Position:   track.Position,
		Title:      track.Title,
		Status:     outcome,
		RecordedAt: now.UTC(),
	}, nil
}

// finish moves the cursor one past the recorded track and clears the
// current track.
func (l *Ledger) finish(id string) {
	if cur := l.CurrentTrack; cur != nil && cur.TrackID == id {
		l.AdvanceCursor(cur.Index + 1)
	} else {
		l.CurrentTrackIndex++
	}
	l.CurrentTrack = nil
}

// AllResolved reports whether every catalog track has a terminal record.
// This, not the cursor position, is the album completion predicate.
func (l *Ledger) AllResolved(cat *catalog.Catalog) bool {
	for _, track := range cat.Tracks {
		if !l.IsResolved(track.ID()) {
			return false
		}
	}
	return true
}

// Pending returns catalog tracks without a terminal record, in catalog order.
func (l *Ledger) Pending(cat *catalog.Catalog) []catalog.Track {
	var pending []catalog.Track
	for _, track := range cat.Tracks {
		if !l.IsResolved(track.ID()) {
			pending = append(pending, track)
		}
	}
	return pending
}

// SetStatus transitions the album status.
func (l *Ledger) SetStatus(status Status) {
	l.Status = status
}

// CheckCatalog compares the ledger against a freshly loaded catalog. A ledger
// for another album fails with ErrAlbumMismatch and a cursor beyond the
// catalog with ErrCorruptLedger. A changed track count is reported last, as
// ErrCatalogMismatch, so callers may choose to accept it.
func (l *Ledger) CheckCatalog(cat *catalog.Catalog) error {
	if textutil.NormalizeTitle(l.Artist) != textutil.NormalizeTitle(cat.Artist) ||
		textutil.NormalizeTitle(l.Album) != textutil.NormalizeTitle(cat.Album) {
		return fmt.Errorf("%w: ledger is for %s - %s, catalog is %s - %s",
			ErrAlbumMismatch, l.Artist, l.Album, cat.Artist, cat.Album)
	}

	// The cursor only moves over catalog indexes; the larger of the two
	// lengths allows for an accepted catalog change.
	limit := max(l.TotalTracks, cat.Len())
	if l.CurrentTrackIndex > limit {
		return corrupt("current_track_index %d is beyond the %d catalog tracks", l.CurrentTrackIndex, limit)
	}
	if l.CurrentTrack != nil && l.CurrentTrack.Index >= limit {
		return corrupt("current_track index %d is beyond the %d catalog tracks", l.CurrentTrack.Index, limit)
	}

	if l.TotalTracks != cat.Len() {
		return fmt.Errorf("%w: ledger has total_tracks %d, catalog lists %d tracks", errTrackCountChanged, l.TotalTracks, cat.Len())
	}
	return nil
}
