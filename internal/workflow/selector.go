package workflow

import (
	"fmt"

	"lyricreel/internal/catalog"
	"lyricreel/internal/ledger"
)

// Persister writes a ledger after every mutation.
type Persister interface {
	Save(*ledger.Ledger) error
}

// Selector chooses the next unit of work for an album.
type Selector struct {
	catalog *catalog.Catalog
	store   Persister
}

// NewSelector binds a selector to a catalog and ledger store.
func NewSelector(cat *catalog.Catalog, store Persister) *Selector {
	return &Selector{catalog: cat, store: store}
}

// Next returns the next track without a terminal record and marks it as the
// ledger's current track. Resolved tracks at the cursor are skipped and the
// cursor moves past them. ok is false when no pending track remains; the
// ledger status is left for the caller to decide.
//
// Selection is deterministic: calling Next again on an unchanged ledger
// returns the same track.
func (s *Selector) Next(l *ledger.Ledger) (track catalog.Track, ok bool, err error) {
	startCursor := l.Cursor()
	tracks := s.catalog.Tracks

	for i := startCursor; i < len(tracks); i++ {
		if l.IsResolved(tracks[i].ID()) {
			l.AdvanceCursor(i + 1)
			continue
		}
		return s.choose(l, i, tracks[i])
	}

	// Tracks behind the cursor can only be unresolved when the catalog grew
	// after the ledger was created; the cursor stays where it is.
	for i := 0; i < startCursor && i < len(tracks); i++ {
		if !l.IsResolved(tracks[i].ID()) {
			return s.choose(l, i, tracks[i])
		}
	}

	if l.Cursor() != startCursor || l.CurrentTrack != nil {
		l.CurrentTrack = nil
		if err := s.store.Save(l); err != nil {
			return catalog.Track{}, false, fmt.Errorf("persist cursor: %w", err)
		}
	}
	return catalog.Track{}, false, nil
}

func (s *Selector) choose(l *ledger.Ledger, index int, track catalog.Track) (catalog.Track, bool, error) {
	l.SetCurrent(index, track)
	if err := s.store.Save(l); err != nil {
		return catalog.Track{}, false, fmt.Errorf("persist current track: %w", err)
	}
	return track, true, nil
}
