// Package musicbrainz builds album catalogs from MusicBrainz release data.
//
// Client wraps the two web service calls catalog fetch needs: a release
// search returning the best match and a release lookup including recordings.
// Fetcher turns the lookup into a catalog.Catalog, numbering tracks across
// all media in order, and optionally asks yt-dlp for a per-track source hint.
package musicbrainz
