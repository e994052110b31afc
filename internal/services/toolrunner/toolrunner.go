// Package toolrunner runs external commands and keeps a bounded tail of their
// combined output for failure diagnostics.
package toolrunner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command describes one external process invocation.
type Command struct {
	Binary string
	Args   []string
	// Env entries (KEY=VALUE) are appended to the parent environment.
	Env []string
	Dir string
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd Command, onLine func(string)) error
}

// ExitError reports a command that ran but exited unsuccessfully.
type ExitError struct {
	Binary string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Binary, e.Code)
}

// CommandExecutor runs commands with os/exec. Stdout and stderr lines are
// delivered to onLine as they arrive, possibly from two goroutines.
type CommandExecutor struct{}

// Run starts the command and blocks until it exits.
func (CommandExecutor) Run(ctx context.Context, command Command, onLine func(string)) error {
	binary := strings.TrimSpace(command.Binary)
	if binary == "" {
		return errors.New("command binary required")
	}
	cmd := exec.CommandContext(ctx, binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", binary, ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &ExitError{Binary: binary, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("wait %s: %w", binary, waitErr)
	}
	if scanErr != nil {
		return fmt.Errorf("scan %s output: %w", binary, scanErr)
	}
	return nil
}

// Tail retains the last N non-empty output lines. It is safe for concurrent use.
type Tail struct {
	mu    sync.Mutex
	limit int
	lines []string
}

// NewTail returns a Tail keeping at most limit lines (minimum 1).
func NewTail(limit int) *Tail {
	if limit < 1 {
		limit = 1
	}
	return &Tail{limit: limit, lines: make([]string, 0, limit)}
}

// Add records a line, evicting the oldest once the limit is reached.
func (t *Tail) Add(line string) {
	line = strings.TrimRight(line, "\r\n \t")
	if strings.TrimSpace(line) == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == t.limit {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.limit-1]
	}
	t.lines = append(t.lines, line)
}

// Lines returns a copy of the retained lines, oldest first.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// String joins the retained lines with newlines.
func (t *Tail) String() string {
	return strings.Join(t.Lines(), "\n")
}
