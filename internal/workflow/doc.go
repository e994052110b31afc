// Package workflow drives an album through the track pipeline one bounded
// batch at a time.
//
// The Selector picks the next track without a terminal ledger record,
// scanning forward from the ledger cursor. The Controller asks it for work,
// hands each track to the stage runner, records the outcome, and persists the
// ledger before moving on, so killing the process between tracks loses
// nothing and killing it mid-track only loses that attempt.
//
// Each invocation processes at most the configured budget of tracks and
// finishes either Completed (every track has a terminal record, possibly
// with failures) or Paused (work remains for a later invocation).
package workflow
