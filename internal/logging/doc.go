// Package logging builds the slog loggers used by lyricreel.
//
// Two formats are supported: a single-line console format and JSON. Both can
// be written to stderr and to the persistent log file at the same time.
// WithContext tags lines with the album, run, track and stage carried on a
// context, which is what the logs command filters on.
package logging
