package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxTracks < 1 {
		return errors.New("batch.max_tracks must be at least 1")
	}
	return nil
}

func (c *Config) validateStages() error {
	if c.Stages.DiagnosticLines < 1 {
		return errors.New("stages.diagnostic_lines must be positive")
	}
	stages := []struct {
		name string
		cmd  StageCommand
	}{
		{"lyrics", c.Stages.Lyrics},
		{"synthesis", c.Stages.Synthesis},
		{"video", c.Stages.Video},
	}
	for _, stage := range stages {
		if stage.cmd.Command == "" {
			return fmt.Errorf("stages.%s.command must be set", stage.name)
		}
		for _, kv := range stage.cmd.Env {
			if !strings.Contains(kv, "=") || strings.HasPrefix(kv, "=") {
				return fmt.Errorf("stages.%s.env entry %q must have the form KEY=VALUE", stage.name, kv)
			}
		}
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.FPS <= 0 {
		return errors.New("merge.fps must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
