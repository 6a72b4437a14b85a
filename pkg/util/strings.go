package util

import "strings"

// NormalizeKey lowercases and trims a protocol or network name for use as a series key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
