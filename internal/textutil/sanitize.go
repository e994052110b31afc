package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// ArtifactName returns the base name every stage uses for a track's files:
// the title lowercased with whitespace runs replaced by underscores and
// filesystem-unsafe characters dropped.
func ArtifactName(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return "untitled"
	}
	joined := strings.ToLower(strings.Join(fields, "_"))
	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "untitled"
	}
	return out
}

// NormalizeTitle returns the comparison form of a title: NFKC-normalized,
// case-folded, with whitespace collapsed to single spaces.
func NormalizeTitle(title string) string {
	folded := cases.Fold().String(norm.NFKC.String(title))
	return strings.Join(strings.Fields(folded), " ")
}

// Slug returns an ASCII, hyphen-separated form of value with diacritics
// stripped. Characters outside [a-z0-9] collapse into single hyphens.
func Slug(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, value)
	if err != nil {
		stripped = value
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	prevDash := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash && b.Len() > 0 {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
