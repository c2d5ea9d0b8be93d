package deckimport

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ramonehamilton/NRDB-Companion/internal/nrdb"
)

var decklistPathRegex = regexp.MustCompile(`/decklist/(?:view/)?([A-Za-z0-9_-]+)`)

// ExtractDecklistID returns the decklist ID from a NetrunnerDB URL or a bare
// ID. Supported forms:
//
//	https://netrunnerdb.com/en/decklist/<id>/<slug>
//	https://netrunnerdb.com/decklist/view/<id>
//	<id>
func ExtractDecklistID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if !strings.Contains(input, "/") {
		if nrdb.ValidateDecklistID(input) == nil {
			return input, true
		}
		return "", false
	}

	path := input
	if u, err := url.Parse(input); err == nil && u.Path != "" {
		path = u.Path
	}

	matches := decklistPathRegex.FindStringSubmatch(path)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}
