package musicbrainz

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"lyricreel/internal/catalog"
	"lyricreel/internal/logging"
)

// Releaser is the subset of Client used by Fetcher.
type Releaser interface {
	SearchRelease(ctx context.Context, artist, album string) (*Release, error)
	GetRelease(ctx context.Context, id string) (*Release, error)
}

// Fetcher assembles catalogs. Hints is optional.
type Fetcher struct {
	Client Releaser
	Hints  HintFinder
	Logger *slog.Logger
}

// Fetch searches for the album and returns its catalog. Tracks are numbered
// from 1 across every medium in release order.
func (f *Fetcher) Fetch(ctx context.Context, artist, album string) (*catalog.Catalog, error) {
	logger := logging.NewComponentLogger(f.Logger, "musicbrainz")

	hit, err := f.Client.SearchRelease(ctx, artist, album)
	if err != nil {
		return nil, err
	}
	logger.Info("release found",
		logging.String(logging.FieldEventType, "release_found"),
		logging.String("release_id", hit.ID),
		logging.String("title", hit.Title),
		logging.String("artist", hit.ArtistName()))

	release, err := f.Client.GetRelease(ctx, hit.ID)
	if err != nil {
		return nil, err
	}

	cat := &catalog.Catalog{
		Album:       firstNonEmpty(release.Title, hit.Title),
		Artist:      firstNonEmpty(release.ArtistName(), hit.ArtistName()),
		ReleaseDate: firstNonEmpty(release.Date, hit.Date),
	}
	for _, medium := range release.Media {
		for _, mt := range medium.Tracks {
			title := firstNonEmpty(mt.Recording.Title, mt.Title)
			length := mt.Length
			if length == 0 {
				length = mt.Recording.Length
			}
			cat.Tracks = append(cat.Tracks, catalog.Track{
				Position: len(cat.Tracks) + 1,
				Title:    title,
				Length:   formatLength(length),
			})
		}
	}
	cat.TrackCount = len(cat.Tracks)
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("release %s: %w", release.ID, err)
	}

	if f.Hints != nil {
		f.fillHints(ctx, logger, cat)
	}
	return cat, nil
}

// fillHints looks up each track. A failed lookup leaves that hint empty.
func (f *Fetcher) fillHints(ctx context.Context, logger *slog.Logger, cat *catalog.Catalog) {
	found := 0
	for i := range cat.Tracks {
		track := &cat.Tracks[i]
		hint, err := f.Hints.Find(ctx, cat.Artist, track.Title)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.WarnWithContext(logger, "source hint lookup failed", "source_hint_failed",
				logging.Int(logging.FieldPosition, track.Position),
				logging.String("title", track.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set source_hint in the catalog by hand if the stages need it"),
				logging.String(logging.FieldImpact, "track has no source hint"))
			continue
		}
		if hint == "" {
			logger.Debug("no source hint found", logging.Int(logging.FieldPosition, track.Position))
			continue
		}
		track.SourceHint = hint
		found++
	}
	logger.Info("source hints resolved",
		logging.String(logging.FieldEventType, "source_hints_complete"),
		logging.Int("found", found),
		logging.Int("tracks", len(cat.Tracks)))
}

// FileName returns the catalog file name for an album inside dir.
func FileName(dir, artist, album string) string {
	name := artist + " - " + album + ".json"
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	return filepath.Join(dir, name)
}

func formatLength(ms int64) string {
	if ms <= 0 {
		return ""
	}
	seconds := (ms + 500) / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
