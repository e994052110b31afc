package logs

import (
	"strings"

	"lyricreel/internal/logging"
)

// Filter selects log lines by structured field. Empty fields match anything.
type Filter struct {
	RunID   string
	TrackID string
	Level   string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return f.RunID == "" && f.TrackID == "" && f.Level == ""
}

// Match reports whether line satisfies every set field.
func (f Filter) Match(line string) bool {
	if f.RunID != "" && !hasField(line, logging.FieldRunID, f.RunID) {
		return false
	}
	if f.TrackID != "" && !hasField(line, logging.FieldTrackID, f.TrackID) {
		return false
	}
	if f.Level != "" && !hasLevel(line, f.Level) {
		return false
	}
	return true
}

func hasField(line, key, value string) bool {
	return strings.Contains(line, " "+key+"="+value) ||
		strings.Contains(line, `"`+key+`":"`+value+`"`)
}

func hasLevel(line, level string) bool {
	lower := strings.ToLower(strings.TrimSpace(level))
	if lower == "warning" {
		lower = "warn"
	}
	// Console lines carry the upper-case label, JSON lines the lower-case one.
	return strings.Contains(line, " "+strings.ToUpper(lower)+" ") ||
		strings.Contains(line, `"level":"`+lower+`"`)
}
