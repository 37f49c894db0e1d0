// Package textutil normalizes text scraped from HTML.
package textutil

import (
	"strings"
)

// DescriptionMarker is the heading token some detail pages prefix the
// description with.
const DescriptionMarker = "INHALT"

// Clean collapses newlines and whitespace runs into single spaces and trims
// the result.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.Join(strings.Fields(text), " ")
}

// CleanDescription trims the description and strips a leading
// DescriptionMarker.
func CleanDescription(description string) string {
	description = strings.TrimSpace(description)
	if strings.HasPrefix(description, DescriptionMarker) {
		// Fixed width: the marker is exactly six bytes.
		description = strings.TrimSpace(description[6:])
	}
	return description
}

const invalidFilenameChars = `<>:"/\|?*`

// SanitizeFilename replaces characters that are invalid in file names with
// underscores and strips leading and trailing dots and spaces. An empty
// result becomes "unnamed".
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		return "unnamed"
	}
	return name
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
