// Package catalog loads the immutable track list of one album.
//
// A Catalog is read once per process from a JSON document (the shape written
// by `lyricreel catalog fetch`, which also matches older fetcher output with
// string positions and youtube_url hints). Validation failures wrap
// ErrInvalidCatalog and are fatal to a batch run.
//
// TrackID derives the identity used by the progress ledger from a track's
// position and normalized title, so reordering or retitling in re-fetched
// metadata never aliases two different tracks.
package catalog
