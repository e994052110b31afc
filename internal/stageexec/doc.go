// Package stageexec runs the per-track stage pipeline and converts its
// result into a ledger outcome.
//
// Stage failures are never returned as errors. They become a Failed outcome
// carrying the stage's diagnostic summary, so one bad track cannot stop a
// batch. The only error Execute returns is context cancellation: a track
// interrupted mid-flight has no outcome and must stay pending.
package stageexec
