package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lyricreel/internal/config"
	"lyricreel/internal/fileutil"
	"lyricreel/internal/ledger"
	"lyricreel/internal/logging"
	"lyricreel/internal/services"
	"lyricreel/internal/services/toolrunner"
)

// ErrNothingToMerge is returned when the ledger yields no existing videos.
var ErrNothingToMerge = errors.New("no completed track videos to merge")

// Input is one track video included in the merge.
type Input struct {
	Position int
	Title    string
	Path     string
}

// Result describes a finished merge.
type Result struct {
	Output  string
	Inputs  []Input
	Skipped []ledger.Record
}

// Merger renders full-album videos.
type Merger struct {
	outputDir  string
	workDir    string
	binary     string
	fps        int
	videoCodec string
	audioCodec string
	tailLines  int
	exec       toolrunner.Executor
	logger     *slog.Logger
}

// New builds a merger from the merge and path settings in cfg.
func New(cfg *config.Config, exec toolrunner.Executor, logger *slog.Logger) *Merger {
	if exec == nil {
		exec = toolrunner.CommandExecutor{}
	}
	return &Merger{
		outputDir:  cfg.Paths.OutputDir,
		workDir:    cfg.Paths.WorkDir,
		binary:     cfg.Merge.FFmpegBinary,
		fps:        cfg.Merge.FPS,
		videoCodec: cfg.Merge.VideoCodec,
		audioCodec: cfg.Merge.AudioCodec,
		tailLines:  cfg.Stages.DiagnosticLines,
		exec:       exec,
		logger:     logging.NewComponentLogger(logger, "merge"),
	}
}

// OutputPath returns the full-album video location for an album.
func OutputPath(outputDir, artist, album string) string {
	return filepath.Join(outputDir, albumToken(artist)+"_"+albumToken(album)+"_full_album.mp4")
}

func albumToken(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, " ", "_"), "/", "-")
}

// Inputs orders the ledger's completed records by position and splits them
// into files that exist and records whose files are missing.
func Inputs(l *ledger.Ledger) ([]Input, []ledger.Record, error) {
	records := make([]ledger.Record, len(l.CompletedTracks))
	copy(records, l.CompletedTracks)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})

	var (
		inputs  []Input
		skipped []ledger.Record
	)
	for _, rec := range records {
		ok, err := fileutil.FileExists(rec.ArtifactLocation)
		if err != nil {
			return nil, nil, fmt.Errorf("check %s: %w", rec.ArtifactLocation, err)
		}
		if !ok {
			skipped = append(skipped, rec)
			continue
		}
		inputs = append(inputs, Input{Position: rec.Position, Title: rec.Title, Path: rec.ArtifactLocation})
	}
	return inputs, skipped, nil
}

// Merge renders the full-album video for l.
func (m *Merger) Merge(ctx context.Context, l *ledger.Ledger) (Result, error) {
	if len(l.CompletedTracks) == 0 {
		return Result{}, fmt.Errorf("%w: ledger has no completed tracks", ErrNothingToMerge)
	}
	inputs, skipped, err := Inputs(l)
	if err != nil {
		return Result{}, err
	}
	for _, rec := range skipped {
		logging.WarnWithContext(m.logger, "track video missing; skipping", "merge_input_missing",
			logging.Int(logging.FieldPosition, rec.Position),
			logging.String("title", rec.Title),
			logging.String("expected_path", rec.ArtifactLocation),
			logging.String(logging.FieldErrorHint, "reset the ledger and rerun to re-render the track"),
			logging.String(logging.FieldImpact, "track omitted from the full-album video"))
	}
	if len(inputs) == 0 {
		return Result{Skipped: skipped}, fmt.Errorf("%w: none of %d completed videos exist", ErrNothingToMerge, len(l.CompletedTracks))
	}

	listPath, err := m.writeConcatList(l, inputs)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(listPath)

	output := OutputPath(m.outputDir, l.Artist, l.Album)
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "merge", "prepare output", "cannot create output directory", err)
	}

	cmd := m.Command(listPath, output)
	m.logger.Info("merging album",
		logging.String(logging.FieldEventType, "merge_start"),
		logging.Int("inputs", len(inputs)),
		logging.Int("skipped", len(skipped)),
		logging.String("output", output))
	m.logger.Debug("merge command", logging.String("command", cmd.String()))

	tail := toolrunner.NewTail(m.tailLines)
	if err := m.exec.Run(ctx, cmd, tail.Add); err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, "merge", "run "+cmd.Binary, "concat failed", err)
		if out := tail.String(); out != "" {
			return Result{}, fmt.Errorf("%w\n%s", wrapped, out)
		}
		return Result{}, wrapped
	}

	m.logger.Info("album merged",
		logging.String(logging.FieldEventType, "merge_complete"),
		logging.String("output", output))
	return Result{Output: output, Inputs: inputs, Skipped: skipped}, nil
}

// Command builds the ffmpeg invocation over a concat list.
func (m *Merger) Command(listPath, output string) toolrunner.Command {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
	}
	if m.fps > 0 {
		args = append(args, "-r", strconv.Itoa(m.fps))
	}
	if m.videoCodec != "" {
		args = append(args, "-c:v", m.videoCodec)
	}
	if m.audioCodec != "" {
		args = append(args, "-c:a", m.audioCodec)
	}
	args = append(args, output)
	return toolrunner.Command{Binary: m.binary, Args: args, Dir: m.workDir}
}

func (m *Merger) writeConcatList(l *ledger.Ledger, inputs []Input) (string, error) {
	var b strings.Builder
	for _, in := range inputs {
		path, err := filepath.Abs(in.Path)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", in.Path, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", concatEscape(path))
	}
	name := albumToken(l.Artist) + "_" + albumToken(l.Album) + ".concat.txt"
	listPath := filepath.Join(m.workDir, name)
	if err := fileutil.WriteFileAtomic(listPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return listPath, nil
}

// concatEscape quotes a path for ffmpeg's concat demuxer.
func concatEscape(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
