package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the description column budget shared by the
// table renderers so every listing truncates the same way.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest usable maxLen: one rune plus "...".
// Smaller values are clamped up to it.
const MinTruncateLen = 4

// TruncateDescription collapses s to a single line and cuts it to maxLen
// runes, ending a shortened string with "...". Whitespace runs, including
// newlines, become single spaces. Rune-based slicing keeps multi-byte
// characters intact.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
