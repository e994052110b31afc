// Package stagecmd implements the lyrics, synthesis, and video stages as
// configured external commands.
//
// Arguments and environment entries may reference track placeholders such as
// {title} or {video_path}; they are expanded per track before the command
// runs. A non-zero exit fails the track with the last lines of the command's
// combined output attached, so the ledger's failure summary is actionable.
package stagecmd
