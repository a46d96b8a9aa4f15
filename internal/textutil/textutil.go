package textutil

import (
	"regexp"
	"strings"
	"time"
)

var markupPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// ContainsMarkup reports whether a label carries embedded markup tags.
func ContainsMarkup(s string) bool {
	return strings.Contains(s, "<") && strings.Contains(s, "</")
}

// StripMarkup removes embedded markup tags from a label, keeping the text.
func StripMarkup(s string) string {
	if !ContainsMarkup(s) {
		return s
	}
	return markupPattern.ReplaceAllString(s, "")
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Timestamp returns the artifact-naming timestamp, e.g. Mon_02Jan_2006_15h04m05s.
func Timestamp() string {
	return time.Now().Format("Mon_02Jan_2006_15h04m05s")
}

// SanitizeFilename replaces characters that are invalid in file names.
func SanitizeFilename(name string) string {
	const invalid = `<>:"/\|?*`
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalid, r) {
			return '_'
		}
		return r
	}, name)
}
