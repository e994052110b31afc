package stagecmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"lyricreel/internal/config"
	"lyricreel/internal/deps"
	"lyricreel/internal/logging"
	"lyricreel/internal/services"
	"lyricreel/internal/services/toolrunner"
	"lyricreel/internal/stage"
)

// Stage names in pipeline order.
const (
	NameLyrics    = "lyrics"
	NameSynthesis = "synthesis"
	NameVideo     = "video"
)

// Option configures a Stage.
type Option func(*Stage)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec toolrunner.Executor) Option {
	return func(s *Stage) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Stage runs one configured external command per track.
type Stage struct {
	name            string
	command         config.StageCommand
	workDir         string
	outputDir       string
	diagnosticLines int
	exec            toolrunner.Executor
	logger          *slog.Logger
}

// New builds a command-backed stage.
func New(name string, command config.StageCommand, cfg *config.Config, opts ...Option) *Stage {
	s := &Stage{
		name:            name,
		command:         command,
		workDir:         cfg.Paths.WorkDir,
		outputDir:       cfg.Paths.OutputDir,
		diagnosticLines: cfg.Stages.DiagnosticLines,
		exec:            toolrunner.CommandExecutor{},
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pipeline returns the three configured stages in execution order.
func Pipeline(cfg *config.Config, opts ...Option) []stage.Handler {
	return []stage.Handler{
		New(NameLyrics, cfg.Stages.Lyrics, cfg, opts...),
		New(NameSynthesis, cfg.Stages.Synthesis, cfg, opts...),
		New(NameVideo, cfg.Stages.Video, cfg, opts...),
	}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return s.name
}

// SetLogger implements stage.LoggerAware.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Execute runs the stage command for the requested track.
func (s *Stage) Execute(ctx context.Context, req stage.Request) error {
	for _, dir := range []string{s.workDir, s.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, s.name, "prepare directories", "cannot create artifact directory", err)
		}
	}

	cmd := s.Command(req)
	tail := toolrunner.NewTail(s.diagnosticLines)
	s.logger.Debug("stage command starting",
		logging.String(logging.FieldEventType, "stage_command_start"),
		logging.String("command", cmd.String()))

	err := s.exec.Run(ctx, cmd, func(line string) {
		tail.Add(line)
		s.logger.Debug("stage output", logging.String("line", line))
	})
	if err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, s.name, "run "+cmd.Binary, "command failed", err)
		if output := tail.String(); output != "" {
			return fmt.Errorf("%w\n%s", wrapped, output)
		}
		return wrapped
	}
	return nil
}

// Command expands placeholders for req into a runnable command.
func (s *Stage) Command(req stage.Request) toolrunner.Command {
	replacer := placeholders(req, s.workDir, s.outputDir)
	args := make([]string, len(s.command.Args))
	for i, arg := range s.command.Args {
		args[i] = replacer.Replace(arg)
	}
	var env []string
	for _, entry := range s.command.Env {
		env = append(env, replacer.Replace(entry))
	}
	return toolrunner.Command{
		Binary: s.command.Command,
		Args:   args,
		Env:    env,
		Dir:    s.workDir,
	}
}

// HealthCheck reports whether the stage binary can be found.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	status := deps.CheckBinaries([]deps.Requirement{{
		Name:    s.name,
		Command: s.command.Command,
	}})[0]
	if !status.Available {
		return stage.Unhealthy(s.name, status.Detail)
	}
	return stage.Healthy(s.name)
}

func placeholders(req stage.Request, workDir, outputDir string) *strings.Replacer {
	return strings.NewReplacer(
		"{title}", req.Track.Title,
		"{artist}", req.Artist,
		"{album}", req.Album,
		"{position}", strconv.Itoa(req.Track.Position),
		"{source_hint}", req.Track.SourceHint,
		"{lyrics_path}", req.Paths.Lyrics,
		"{audio_path}", req.Paths.Audio,
		"{video_path}", req.Paths.Video,
		"{work_dir}", workDir,
		"{output_dir}", outputDir,
	)
}
