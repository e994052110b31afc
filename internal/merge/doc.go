// Package merge concatenates an album's rendered track videos into one
// full-album video with ffmpeg.
//
// The input list comes from the progress ledger's completed records, not the
// catalog, so only tracks that actually rendered are merged. Records whose
// files have since disappeared are skipped with a warning.
package merge
