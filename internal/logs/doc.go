// Package logs reads lyricreel's persistent log file for the logs command.
//
// Last returns the final lines matching a Filter using a fixed-size ring, and
// Follow polls for appended lines from a byte offset until its context ends.
// Filters understand both the console and JSON log formats, so a run id or
// track id printed by status or history can be used to narrow the output.
package logs
