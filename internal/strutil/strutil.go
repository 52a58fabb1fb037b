package strutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateUTF8 returns the longest prefix of s that is at most maxBytes
// bytes and does not split a multi-byte UTF-8 character.
func TruncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

// Normalize lowercases and trims surrounding whitespace. Both the snapshot
// matcher and the confirmation vocabulary compare normalized text.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContainsNormalized reports whether the normalized haystack contains the
// already-normalized needle.
func ContainsNormalized(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), needle)
}
