// Package ledger persists the per-album progress ledger that makes batch
// runs resumable.
//
// A Ledger records which tracks reached a terminal outcome (completed or
// failed), which track is currently being attempted, a monotonic cursor into
// the catalog, and the album status. The Store owns the on-disk JSON file:
// every mutation is followed by a full atomic rewrite, loads are
// schema-checked, and an advisory file lock keeps a second process away from
// the same album while a batch is running.
//
// A structurally invalid file surfaces ErrCorruptLedger and is never repaired
// automatically. Resetting an album is an explicit operator action
// (`lyricreel ledger reset`).
package ledger
