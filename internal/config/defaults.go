package config

const (
	defaultConfigPath           = "~/.config/lyricreel/config.toml"
	defaultStateDir             = "~/.local/share/lyricreel/state"
	defaultWorkDir              = "~/.local/share/lyricreel/work"
	defaultOutputDir            = "~/.local/share/lyricreel/outputs"
	defaultLogDir               = "~/.local/share/lyricreel/logs"
	defaultMaxTracks            = 2
	defaultDiagnosticLines      = 20
	defaultFFmpegBinary         = "ffmpeg"
	defaultMergeFPS             = 24
	defaultMergeVideoCodec      = "libx264"
	defaultMergeAudioCodec      = "aac"
	defaultMusicBrainzBaseURL   = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzUserAgent = "lyricreel/0.1 ( https://github.com/lyricreel/lyricreel )"
	defaultMusicBrainzTimeout   = 15
	defaultYTDLPBinary          = "yt-dlp"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultStageInterpreter     = "python3"
	defaultLyricsScript         = "fetch_lyrics.py"
	defaultSynthesisScript      = "generate_song.py"
	defaultVideoScript          = "create_video.py"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Batch: Batch{
			MaxTracks: defaultMaxTracks,
		},
		Stages: Stages{
			DiagnosticLines: defaultDiagnosticLines,
			Lyrics: StageCommand{
				Command: defaultStageInterpreter,
				Args:    []string{defaultLyricsScript, "{title}", "{artist}", "{source_hint}", "{lyrics_path}"},
			},
			Synthesis: StageCommand{
				Command: defaultStageInterpreter,
				Args:    []string{defaultSynthesisScript, "{lyrics_path}", "{audio_path}"},
			},
			Video: StageCommand{
				Command: defaultStageInterpreter,
				Args:    []string{defaultVideoScript, "{audio_path}", "{video_path}"},
			},
		},
		Merge: Merge{
			FFmpegBinary: defaultFFmpegBinary,
			FPS:          defaultMergeFPS,
			VideoCodec:   defaultMergeVideoCodec,
			AudioCodec:   defaultMergeAudioCodec,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:        defaultMusicBrainzBaseURL,
			UserAgent:      defaultMusicBrainzUserAgent,
			TimeoutSeconds: defaultMusicBrainzTimeout,
		},
		SourceHints: SourceHints{
			YTDLPBinary: defaultYTDLPBinary,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			TrackFailed:    true,
			BatchPaused:    true,
			AlbumCompleted: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
