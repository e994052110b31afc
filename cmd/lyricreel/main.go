package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Process exit codes.
const (
	exitOK         = 0
	exitFatal      = 1
	exitIncomplete = 2
)

// exitError carries a specific process exit code. An empty message prints
// nothing.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitFatal
}

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err != nil && err.Error() != "" && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
