package deps

import "lyricreel/internal/config"

// Requirements lists the binaries a configuration needs. yt-dlp is only
// mandatory when source hints are enabled.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "Lyrics stage", Command: cfg.Stages.Lyrics.Command, Description: "Fetches and formats track lyrics"},
		{Name: "Synthesis stage", Command: cfg.Stages.Synthesis.Command, Description: "Generates the song audio"},
		{Name: "Video stage", Command: cfg.Stages.Video.Command, Description: "Renders the lyric video"},
		{Name: "FFmpeg", Command: cfg.Merge.FFmpegBinary, Description: "Concatenates track videos for album merge", Optional: true},
		{Name: "yt-dlp", Command: cfg.SourceHints.YTDLPBinary, Description: "Finds per-track source hints during catalog fetch", Optional: !cfg.SourceHints.Enabled},
	}
}
