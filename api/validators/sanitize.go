package validators

import "strings"

// SanitizeString trims surrounding whitespace and bounds the value to maxLen
// runes. Truncation counts runes, not bytes, so accented supplier and product
// names are never cut mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
