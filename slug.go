package looptomd

import (
	"strings"
	"unicode"
)

// Slugify creates a URL- and filesystem-safe identifier from a display
// label. Converts to lowercase, replaces whitespace runs with single
// hyphens, and removes everything that is not a letter or digit. Labels
// that reduce to nothing become "untitled".
func Slugify(label string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' || r == '/' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	result := strings.TrimSuffix(sb.String(), "-")
	if result == "" {
		return "untitled"
	}
	return result
}

// FirstLine returns the first non-empty line of s, trimmed. Multi-line
// visible text falls back to its leading line when used as a label.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
