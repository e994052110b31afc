package musicbrainz

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"lyricreel/internal/services/toolrunner"
)

// HintFinder returns a source media URL for a track, or "" when none is
// found.
type HintFinder interface {
	Find(ctx context.Context, artist, title string) (string, error)
}

// YTDLP searches with yt-dlp's ytsearch1 extractor.
type YTDLP struct {
	Binary string
	Exec   toolrunner.Executor
}

// Find returns the watch URL of the first search result.
func (y YTDLP) Find(ctx context.Context, artist, title string) (string, error) {
	exec := y.Exec
	if exec == nil {
		exec = toolrunner.CommandExecutor{}
	}
	query := strings.TrimSpace(artist + " " + title)
	cmd := toolrunner.Command{
		Binary: y.Binary,
		Args: []string{
			"--flat-playlist",
			"--no-warnings",
			"--print", "id",
			"ytsearch1:" + query,
		},
	}

	var (
		mu    sync.Mutex
		id    string
		lines []string
	)
	err := exec.Run(ctx, cmd, func(line string) {
		mu.Lock()
		defer mu.Unlock()
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		lines = append(lines, line)
		if id == "" && validVideoID(line) {
			id = line
		}
	})
	if err != nil {
		if len(lines) > 0 {
			return "", fmt.Errorf("yt-dlp search %q: %w: %s", query, err, lines[len(lines)-1])
		}
		return "", fmt.Errorf("yt-dlp search %q: %w", query, err)
	}
	if id == "" {
		return "", nil
	}
	return "https://www.youtube.com/watch?v=" + id, nil
}

func validVideoID(value string) bool {
	if len(value) != 11 {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
