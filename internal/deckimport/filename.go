package deckimport

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameLength = 100

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	slugUnsafeChars     = regexp.MustCompile(`[^a-z0-9_-]+`)
	repeatedDashes      = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename replaces characters that are not allowed in file names
// and trims the result to a portable length.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, " .")

	if len(name) > maxFilenameLength {
		name = strings.TrimRight(truncate(name, maxFilenameLength), " .")
	}
	if name == "" {
		return "unnamed"
	}
	return name
}

// Slug turns a deck name into a lowercase, dash-separated file name stem.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugUnsafeChars.ReplaceAllString(s, "")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if len(s) > maxFilenameLength {
		s = strings.Trim(truncate(s, maxFilenameLength), "-_")
	}
	if s == "" {
		return "deck"
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
