package utils

import "strings"

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. A max of zero or less returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// FirstLine returns the first line of s with surrounding whitespace removed.
// Used for one-line previews of multi-line card content in reports.
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
