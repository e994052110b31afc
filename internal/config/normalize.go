package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStages()
	c.normalizeMerge()
	c.normalizeMusicBrainz()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeStages() {
	if c.Stages.DiagnosticLines <= 0 {
		c.Stages.DiagnosticLines = defaultDiagnosticLines
	}
	for _, stage := range []*StageCommand{&c.Stages.Lyrics, &c.Stages.Synthesis, &c.Stages.Video} {
		stage.Command = strings.TrimSpace(stage.Command)
		env := stage.Env[:0]
		for _, kv := range stage.Env {
			if kv = strings.TrimSpace(kv); kv != "" {
				env = append(env, kv)
			}
		}
		stage.Env = env
	}
}

func (c *Config) normalizeMerge() {
	c.Merge.FFmpegBinary = strings.TrimSpace(c.Merge.FFmpegBinary)
	if c.Merge.FFmpegBinary == "" {
		c.Merge.FFmpegBinary = defaultFFmpegBinary
	}
	c.Merge.VideoCodec = strings.TrimSpace(c.Merge.VideoCodec)
	if c.Merge.VideoCodec == "" {
		c.Merge.VideoCodec = defaultMergeVideoCodec
	}
	c.Merge.AudioCodec = strings.TrimSpace(c.Merge.AudioCodec)
	if c.Merge.AudioCodec == "" {
		c.Merge.AudioCodec = defaultMergeAudioCodec
	}
	if c.Merge.FPS == 0 {
		c.Merge.FPS = defaultMergeFPS
	}
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultMusicBrainzUserAgent
	}
	if c.MusicBrainz.TimeoutSeconds <= 0 {
		c.MusicBrainz.TimeoutSeconds = defaultMusicBrainzTimeout
	}
	c.SourceHints.YTDLPBinary = strings.TrimSpace(c.SourceHints.YTDLPBinary)
	if c.SourceHints.YTDLPBinary == "" {
		c.SourceHints.YTDLPBinary = defaultYTDLPBinary
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("LYRICREEL_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
