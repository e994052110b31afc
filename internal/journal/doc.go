// Package journal keeps an append-only SQLite history of batch invocations
// and track attempts.
//
// The journal is informational. The progress ledger stays the single source
// of truth for what is done; a journal write failure is logged and never
// changes batch results. `lyricreel history` renders its contents.
package journal
