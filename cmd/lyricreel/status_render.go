package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label  string
	colors text.Colors
}{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

const statusLabelWidth = 18

// printer writes the sectioned "label: [KIND] message" reports used by run,
// status and doctor. Color is only applied on terminals.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, color: shouldColorize(out)}
}

func (p *printer) section(title string) {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len([]rune(heading)))
	p.println(p.paint(text.Colors{text.FgBlue, text.Bold}, heading), p.paint(text.Colors{text.FgBlue}, rule))
}

func (p *printer) line(label string, kind statusKind, message string) string {
	style := statusStyles[kind]
	body := "[" + style.label + "]"
	if message != "" {
		body += " " + message
	}
	return p.paint(style.colors, fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", body))
}

func (p *printer) status(label string, kind statusKind, message string) {
	p.println(p.line(label, kind, message))
}

func (p *printer) println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
}

func (p *printer) paint(colors text.Colors, s string) string {
	if !p.color {
		return s
	}
	return colors.Sprint(s)
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
