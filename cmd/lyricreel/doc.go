// Package main hosts the lyricreel CLI entrypoint and command graph.
//
// The Cobra command tree drives album batches (run), inspects their progress
// (status, history), renders the full-album video (merge), and covers the
// operational chores around them: catalog fetching and validation, ledger
// reset, environment checks, and configuration scaffolding.
//
// run exits 0 once the album is complete (failed tracks included), 2 while
// tracks remain pending, and 1 on fatal errors, so wrapper scripts can loop
// until the exit status is 0.
package main
