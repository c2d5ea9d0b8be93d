package nrdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
)

// ImageURLTemplate is the card image location used when the API response
// does not provide one.
const ImageURLTemplate = "https://card-images.netrunnerdb.com/v2/large/{code}.jpg"

var (
	// ErrFetch is wrapped by every transport or API failure.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound is wrapped by NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput reports a malformed identifier passed to the client.
	ErrInvalidInput = errors.New("invalid input")
)

// response is the envelope every public endpoint returns.
type response[T any] struct {
	Data             []T    `json:"data"`
	Total            int    `json:"total"`
	Success          bool   `json:"success"`
	ImageURLTemplate string `json:"imageUrlTemplate"`
}

// apiCard is the subset of the card payload the application uses.
type apiCard struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	FactionCode string `json:"faction_code"`
	SideCode    string `json:"side_code"`
	PackCode    string `json:"pack_code"`
	Quantity    int    `json:"quantity"`
	DeckLimit   int    `json:"deck_limit"`
	ImageURL    string `json:"image_url"`
}

func (c apiCard) toCard(template string) cards.Card {
	url := c.ImageURL
	if url == "" {
		url = ImageURL(template, c.Code)
	}
	return cards.Card{
		Code:        c.Code,
		Title:       c.Title,
		TypeCode:    c.TypeCode,
		FactionCode: c.FactionCode,
		SideCode:    c.SideCode,
		PackCode:    c.PackCode,
		Quantity:    c.Quantity,
		DeckLimit:   c.DeckLimit,
		ImageURL:    url,
	}
}

// ImageURL expands an image template for a card code. An empty template
// falls back to ImageURLTemplate.
func ImageURL(template, code string) string {
	if template == "" {
		template = ImageURLTemplate
	}
	return strings.ReplaceAll(template, "{code}", code)
}

// FetchError represents a failed request to NetrunnerDB.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface for FetchError.
func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("NetrunnerDB request failed (HTTP %d) for %s: %s", e.StatusCode, e.URL, msg)
	}
	return fmt.Sprintf("NetrunnerDB request failed for %s: %s", e.URL, msg)
}

// Unwrap exposes ErrFetch and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetch, e.Err}
	}
	return []error{ErrFetch}
}

// NotFoundError represents a missing card, pack or decklist.
type NotFoundError struct {
	Kind string
	ID   string
	URL  string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
