package nrdb

import (
	"fmt"
	"regexp"
)

var (
	decklistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	cardCodePattern   = regexp.MustCompile(`^[0-9]{5}$`)
	packCodePattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ValidateDecklistID checks that id is a non-empty alphanumeric identifier.
// Dashes and underscores are allowed.
func ValidateDecklistID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: decklist ID cannot be empty", ErrInvalidInput)
	}
	if !decklistIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid decklist ID format: %s", ErrInvalidInput, id)
	}
	return nil
}

// ValidateCardCode checks that code is a five digit card code.
func ValidateCardCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: card code cannot be empty", ErrInvalidInput)
	}
	if !cardCodePattern.MatchString(code) {
		return fmt.Errorf("%w: card code must be 5 digits, got: %s", ErrInvalidInput, code)
	}
	return nil
}

// ValidatePackCode checks that code is a non-empty pack identifier.
func ValidatePackCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: pack code cannot be empty", ErrInvalidInput)
	}
	if !packCodePattern.MatchString(code) {
		return fmt.Errorf("%w: invalid pack code format: %s", ErrInvalidInput, code)
	}
	return nil
}
