// Package cards holds the NetrunnerDB card, pack and decklist metadata types
// shared by the catalog, the collection engine and the proxy pipeline.
package cards

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Card represents metadata about a single Netrunner card.
type Card struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	FactionCode string `json:"faction_code"`
	SideCode    string `json:"side_code,omitempty"`
	PackCode    string `json:"pack_code"`

	// Quantity is the number of copies a single printing of the pack contains.
	Quantity int `json:"quantity"`

	// DeckLimit is the maximum number of copies allowed in a deck.
	DeckLimit int `json:"deck_limit"`

	ImageURL string `json:"image_url,omitempty"`
}

// IsIdentity reports whether the card is an identity card.
func (c Card) IsIdentity() bool {
	return c.TypeCode == "identity"
}

// Pack represents a data pack, deluxe expansion or core set.
type Pack struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	CycleCode string `json:"cycle_code"`
	Cycle     string `json:"cycle,omitempty"`

	// DateRelease is formatted YYYY-MM-DD and is empty for unreleased packs.
	DateRelease string `json:"date_release"`
}

// Cycle groups packs released together.
type Cycle struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// DecklistEntry is one line of a decklist.
type DecklistEntry struct {
	Code     string
	Quantity int
}

// Decklist is a published deck. Cards keeps the order in which the deck
// lists them so reports stay stable between runs.
type Decklist struct {
	ID          string
	Name        string
	Description string
	Cards       []DecklistEntry
}

// TotalCards returns the sum of all quantities in the decklist.
func (d *Decklist) TotalCards() int {
	total := 0
	for _, entry := range d.Cards {
		total += entry.Quantity
	}
	return total
}

// UnmarshalJSON decodes the NetrunnerDB decklist object. The "cards" object
// is read token by token so document order survives decoding.
func (d *Decklist) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Cards       json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.ID = string(bytes.Trim(raw.ID, `"`))
	d.Name = raw.Name
	d.Description = raw.Description
	d.Cards = nil

	if len(raw.Cards) == 0 || string(raw.Cards) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Cards))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode decklist cards: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode decklist cards: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode decklist cards: %w", err)
		}
		code, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode decklist cards: unexpected key %v", keyTok)
		}

		var qty int
		if err := dec.Decode(&qty); err != nil {
			return fmt.Errorf("decode quantity for %s: %w", code, err)
		}
		d.Cards = append(d.Cards, DecklistEntry{Code: code, Quantity: qty})
	}

	return nil
}
