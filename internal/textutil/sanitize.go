package textutil

import (
	"strings"
	"unicode"
)

// SanitizeSegment makes one path segment safe on common filesystems. Characters
// reserved on Windows and control characters become '_'; surrounding spaces
// and trailing dots are trimmed. An empty result becomes "_".
func SanitizeSegment(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"|?*\`, r) {
			return '_'
		}
		return r
	}, name)
	cleaned = strings.TrimRight(strings.TrimSpace(cleaned), ".")
	if cleaned == "" {
		return "_"
	}
	return cleaned
}
