// Package proxy turns comparison results into the list of cards to print.
package proxy

import (
	"sort"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/comparison"
)

// Card is a card to print, with the number of copies needed.
type Card struct {
	Code        string
	Title       string
	PackCode    string
	PackName    string
	TypeCode    string
	FactionCode string
	ImageURL    string

	Required int
	Owned    int
	Copies   int
}

// Label returns the title, or the code when the title is unknown.
func (c Card) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Code
}

// PackSource lists the cards of a pack. *cards.Index satisfies it.
type PackSource interface {
	PackCards(packCode string) []cards.Card
	PackName(code string) string
}

// Owner reports whether a card is owned. *collection.Manager satisfies it.
type Owner interface {
	HasCard(code string, qty int) bool
}

// Select returns one entry per card with missing copies, in decklist order.
func Select(result *comparison.Result) []Card {
	var out []Card
	for _, req := range comparison.ProxyCards(result) {
		out = append(out, fromRequirement(req, req.Missing))
	}
	return out
}

// All returns every card of the deck with its full required count.
func All(result *comparison.Result) []Card {
	out := make([]Card, 0, len(result.Requirements))
	for _, req := range result.Requirements {
		if req.Required > 0 {
			out = append(out, fromRequirement(req, req.Required))
		}
	}
	return out
}

// ForPack returns one copy of every card in a pack that is not owned.
func ForPack(packCode string, packs PackSource, owned Owner) []Card {
	name := packs.PackName(packCode)

	var out []Card
	for _, card := range packs.PackCards(packCode) {
		if owned.HasCard(card.Code, 1) {
			continue
		}
		out = append(out, Card{
			Code:        card.Code,
			Title:       card.Title,
			PackCode:    packCode,
			PackName:    name,
			TypeCode:    card.TypeCode,
			FactionCode: card.FactionCode,
			ImageURL:    card.ImageURL,
			Required:    1,
			Copies:      1,
		})
	}
	return out
}

// Expand returns one entry per printed copy. With groupByPack the copies are
// ordered by pack name and then title, otherwise input order is kept.
func Expand(list []Card, groupByPack bool) []Card {
	var out []Card
	for _, card := range list {
		for i := 0; i < card.Copies; i++ {
			out = append(out, card)
		}
	}
	if groupByPack {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].PackName != out[j].PackName {
				return out[i].PackName < out[j].PackName
			}
			return out[i].Title < out[j].Title
		})
	}
	return out
}

// TotalCopies returns the number of card slots the list fills.
func TotalCopies(list []Card) int {
	total := 0
	for _, card := range list {
		total += card.Copies
	}
	return total
}

func fromRequirement(req comparison.CardRequirement, copies int) Card {
	return Card{
		Code:        req.Code,
		Title:       req.Title,
		PackCode:    req.PackCode,
		PackName:    req.PackName,
		TypeCode:    req.TypeCode,
		FactionCode: req.FactionCode,
		ImageURL:    req.ImageURL,
		Required:    req.Required,
		Owned:       req.Owned,
		Copies:      copies,
	}
}
