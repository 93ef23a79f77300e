package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SanitizeToken converts a string to a filesystem-safe token. Letters and
// digits are kept, everything else becomes an underscore. Returns "clip" for
// input with no usable characters.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "clip"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "clip"
	}
	return out
}

// DeriveTitle builds a human-readable title from a filename or path: the
// extension is dropped, separators collapse to spaces, and the result is
// title-cased.
func DeriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Untitled Clip"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Clip"
	}
	return cases.Title(language.Und).String(title)
}
