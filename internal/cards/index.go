package cards

import (
	"sort"
	"strings"
)

// Index is an immutable in-memory snapshot of the catalog. It answers the
// lookups the collection engine needs without any I/O.
type Index struct {
	cards  map[string]Card
	packs  map[string]Pack
	order  []Pack
	byPack map[string][]Card
	titles map[string]string
}

// NewIndex builds an index from the full card set and pack list.
func NewIndex(all map[string]Card, packs []Pack) *Index {
	ix := &Index{
		cards:  make(map[string]Card, len(all)),
		packs:  make(map[string]Pack, len(packs)),
		order:  make([]Pack, 0, len(packs)),
		byPack: make(map[string][]Card),
		titles: make(map[string]string, len(all)),
	}

	for code, card := range all {
		if card.Code == "" {
			card.Code = code
		}
		ix.cards[card.Code] = card
		ix.byPack[card.PackCode] = append(ix.byPack[card.PackCode], card)

		// First printing wins for title lookups.
		key := strings.ToLower(card.Title)
		if existing, ok := ix.titles[key]; !ok || card.Code < existing {
			ix.titles[key] = card.Code
		}
	}

	for code := range ix.byPack {
		list := ix.byPack[code]
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	}

	for _, pack := range packs {
		if pack.Code == "" {
			continue
		}
		ix.packs[pack.Code] = pack
		ix.order = append(ix.order, pack)
	}

	return ix
}

// Card looks up a card by code.
func (ix *Index) Card(code string) (Card, bool) {
	card, ok := ix.cards[code]
	return card, ok
}

// Pack looks up a pack by code.
func (ix *Index) Pack(code string) (Pack, bool) {
	pack, ok := ix.packs[code]
	return pack, ok
}

// PackName returns the display name of a pack, or the code when unknown.
func (ix *Index) PackName(code string) string {
	if pack, ok := ix.packs[code]; ok && pack.Name != "" {
		return pack.Name
	}
	return code
}

// Packs returns the packs in catalog order.
func (ix *Index) Packs() []Pack {
	out := make([]Pack, len(ix.order))
	copy(out, ix.order)
	return out
}

// PackCards returns the cards printed in a pack, sorted by code.
func (ix *Index) PackCards(packCode string) []Card {
	return ix.byPack[packCode]
}

// Cards returns every card sorted by code.
func (ix *Index) Cards() []Card {
	out := make([]Card, 0, len(ix.cards))
	for _, card := range ix.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FindByTitle looks up a card by its title, ignoring case.
func (ix *Index) FindByTitle(title string) (Card, bool) {
	code, ok := ix.titles[strings.ToLower(strings.TrimSpace(title))]
	if !ok {
		return Card{}, false
	}
	return ix.cards[code], true
}

// Len returns the number of cards in the index.
func (ix *Index) Len() int {
	return len(ix.cards)
}
