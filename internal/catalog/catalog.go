package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lyricreel/internal/fileutil"
)

// ErrInvalidCatalog marks a malformed or unreadable album catalog.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Track is one song of the album and the unit of pipeline work.
type Track struct {
	Position   int    `json:"position"`
	Title      string `json:"title"`
	SourceHint string `json:"source_hint,omitempty"`
	Length     string `json:"length,omitempty"`
}

// ID returns the ledger identity of the track.
func (t Track) ID() string {
	return TrackID(t.Position, t.Title)
}

// Catalog is the read-only description of an album.
type Catalog struct {
	Album       string  `json:"album"`
	Artist      string  `json:"artist"`
	ReleaseDate string  `json:"release_date,omitempty"`
	TrackCount  int     `json:"track_count"`
	Tracks      []Track `json:"tracks"`
}

// Len returns the number of tracks in catalog order.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Tracks)
}

// Lookup returns the track with the given ledger identity.
func (c *Catalog) Lookup(id string) (Track, bool) {
	if c == nil {
		return Track{}, false
	}
	for _, track := range c.Tracks {
		if track.ID() == id {
			return track, true
		}
	}
	return Track{}, false
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidCatalog, path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog JSON.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidCatalog, err)
	}

	cat := &Catalog{
		Album:       strings.TrimSpace(raw.Album),
		Artist:      strings.TrimSpace(raw.Artist),
		ReleaseDate: strings.TrimSpace(raw.ReleaseDate),
		TrackCount:  raw.TrackCount,
		Tracks:      make([]Track, 0, len(raw.Tracks)),
	}
	for i, rt := range raw.Tracks {
		track, err := rt.track()
		if err != nil {
			return nil, fmt.Errorf("%w: tracks[%d]: %w", ErrInvalidCatalog, i, err)
		}
		cat.Tracks = append(cat.Tracks, track)
	}
	if cat.TrackCount == 0 {
		cat.TrackCount = len(cat.Tracks)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate checks the structural rules a batch run depends on.
func (c *Catalog) Validate() error {
	if c.Album == "" {
		return fmt.Errorf("%w: album is required", ErrInvalidCatalog)
	}
	if c.Artist == "" {
		return fmt.Errorf("%w: artist is required", ErrInvalidCatalog)
	}
	if len(c.Tracks) == 0 {
		return fmt.Errorf("%w: at least one track is required", ErrInvalidCatalog)
	}
	if c.TrackCount != len(c.Tracks) {
		return fmt.Errorf("%w: track_count %d does not match %d listed tracks", ErrInvalidCatalog, c.TrackCount, len(c.Tracks))
	}
	positions := make(map[int]int, len(c.Tracks))
	for i, track := range c.Tracks {
		if track.Position < 1 {
			return fmt.Errorf("%w: tracks[%d]: position must be positive, got %d", ErrInvalidCatalog, i, track.Position)
		}
		if strings.TrimSpace(track.Title) == "" {
			return fmt.Errorf("%w: tracks[%d]: title is required", ErrInvalidCatalog, i)
		}
		if prev, ok := positions[track.Position]; ok {
			return fmt.Errorf("%w: tracks[%d] and tracks[%d] share position %d", ErrInvalidCatalog, prev, i, track.Position)
		}
		positions[track.Position] = i
	}
	return nil
}

// Save writes the catalog as indented JSON.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

type rawCatalog struct {
	Album       string     `json:"album"`
	Artist      string     `json:"artist"`
	ReleaseDate string     `json:"release_date"`
	TrackCount  int        `json:"track_count"`
	Tracks      []rawTrack `json:"tracks"`
}

type rawTrack struct {
	Position   json.RawMessage `json:"position"`
	Title      string          `json:"title"`
	SourceHint *string         `json:"source_hint"`
	YouTubeURL *string         `json:"youtube_url"`
	Length     json.RawMessage `json:"length"`
}

func (rt rawTrack) track() (Track, error) {
	position, err := parsePosition(rt.Position)
	if err != nil {
		return Track{}, err
	}
	track := Track{
		Position: position,
		Title:    strings.TrimSpace(rt.Title),
		Length:   rawScalar(rt.Length),
	}
	switch {
	case rt.SourceHint != nil && strings.TrimSpace(*rt.SourceHint) != "":
		track.SourceHint = strings.TrimSpace(*rt.SourceHint)
	case rt.YouTubeURL != nil:
		track.SourceHint = strings.TrimSpace(*rt.YouTubeURL)
	}
	return track, nil
}

// parsePosition accepts a JSON number or a numeric string.
func parsePosition(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("position is required")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("position must be a number, got %s", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("position must be numeric, got %q", s)
	}
	return n, nil
}

func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
