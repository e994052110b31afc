// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp album names, track identifiers, stage names,
//     and run identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure text
//     consistent across stages, and Summary for the one-line text persisted
//     in the progress ledger.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error text, observability) stays uniform across the pipeline.
package services
