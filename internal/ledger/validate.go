package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCorruptLedger marks a ledger file that cannot be trusted.
	ErrCorruptLedger = errors.New("corrupt ledger")
	// ErrCatalogMismatch marks a ledger created from a differently shaped catalog.
	ErrCatalogMismatch = errors.New("ledger does not match catalog")
	// ErrAlbumMismatch marks a ledger that belongs to another album. It wraps
	// ErrCatalogMismatch and is never accepted.
	ErrAlbumMismatch     = fmt.Errorf("%w: different album", ErrCatalogMismatch)
	errTrackCountChanged = fmt.Errorf("%w: track count changed", ErrCatalogMismatch)
	// ErrLocked is returned when another process holds the album lock.
	ErrLocked = errors.New("ledger is locked by another process")
)

// Validate checks the structural invariants of a ledger.
func (l *Ledger) Validate() error {
	if l.SchemaVersion != SchemaVersion {
		return corrupt("unsupported schema_version %d (want %d)", l.SchemaVersion, SchemaVersion)
	}
	if strings.TrimSpace(l.Album) == "" {
		return corrupt("album is empty")
	}
	if strings.TrimSpace(l.Artist) == "" {
		return corrupt("artist is empty")
	}
	if l.TotalTracks < 1 {
		return corrupt("total_tracks must be positive, got %d", l.TotalTracks)
	}
	if !l.Status.valid() {
		return corrupt("unknown status %q", l.Status)
	}
	if l.CurrentTrackIndex < 0 {
		return corrupt("current_track_index must not be negative, got %d", l.CurrentTrackIndex)
	}

	seen := make(map[string]Outcome, len(l.CompletedTracks)+len(l.FailedTracks))
	check := func(field string, records []Record, want Outcome) error {
		for i, rec := range records {
			if strings.TrimSpace(rec.TrackID) == "" {
				return corrupt("%s[%d]: track_id is empty", field, i)
			}
			if rec.Status != want {
				return corrupt("%s[%d]: status %q, want %q", field, i, rec.Status, want)
			}
			if want == OutcomeCompleted && rec.ArtifactLocation == "" {
				return corrupt("%s[%d]: artifact_location is empty", field, i)
			}
			if want == OutcomeFailed && rec.ErrorSummary == "" {
				return corrupt("%s[%d]: error_summary is empty", field, i)
			}
			if prev, dup := seen[rec.TrackID]; dup {
				return corrupt("track %s recorded twice (%s and %s)", rec.TrackID, prev, want)
			}
			seen[rec.TrackID] = want
		}
		return nil
	}
	if err := check("completed_tracks", l.CompletedTracks, OutcomeCompleted); err != nil {
		return err
	}
	if err := check("failed_tracks", l.FailedTracks, OutcomeFailed); err != nil {
		return err
	}

	if l.CurrentTrack != nil {
		if strings.TrimSpace(l.CurrentTrack.TrackID) == "" {
			return corrupt("current_track has no track_id")
		}
		if l.CurrentTrack.Index < 0 {
			return corrupt("current_track index must not be negative, got %d", l.CurrentTrack.Index)
		}
		if _, resolved := seen[l.CurrentTrack.TrackID]; resolved {
			return corrupt("current_track %s already has a terminal record", l.CurrentTrack.TrackID)
		}
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptLedger, fmt.Sprintf(format, args...))
}
