// Package stage defines the contract between the stage runner and the three
// per-track pipeline stages (lyrics, synthesis, video).
//
// Stages never share in-memory state. They exchange work through files whose
// locations come from PathsFor, so the naming contract lives in one place.
package stage
