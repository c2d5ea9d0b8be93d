// Package comparison checks a NetrunnerDB decklist against a collection and
// reports which cards are owned and which must be proxied.
package comparison

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
)

// DecklistSource fetches published decklists.
type DecklistSource interface {
	Decklist(ctx context.Context, id string) (*cards.Decklist, error)
}

// CardSource resolves card and pack metadata. *cards.Index satisfies it.
type CardSource interface {
	Card(code string) (cards.Card, bool)
	PackName(code string) string
}

// Availability reports how many playable copies of a card the user has.
// *collection.Manager satisfies it.
type Availability interface {
	AvailableCount(code string) int
}

// CardRequirement is one decklist line checked against the collection.
type CardRequirement struct {
	Code        string
	Title       string
	PackCode    string
	PackName    string
	TypeCode    string
	FactionCode string
	ImageURL    string

	Required int
	Owned    int
	Missing  int
}

// IsSatisfied reports whether no copies are missing.
func (r CardRequirement) IsSatisfied() bool {
	return r.Missing == 0
}

// DisplayName returns the card title, or its code when the catalog does not
// know the card.
func (r CardRequirement) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Code
}

// Stats aggregates a comparison.
type Stats struct {
	TotalCards           int
	OwnedCards           int
	MissingCards         int
	CompletionPercentage float64
}

// Result is the outcome of comparing one decklist.
type Result struct {
	DecklistID   string
	DecklistName string

	// Identity is nil when the decklist has no identity card.
	Identity *cards.Card

	// Requirements follow the order of the decklist.
	Requirements []CardRequirement
	Stats        Stats
}

// IdentityTitle returns the identity's title or "Unknown".
func (r *Result) IdentityTitle() string {
	if r.Identity == nil || r.Identity.Title == "" {
		return "Unknown"
	}
	return r.Identity.Title
}

// IdentityFaction returns the identity's faction code or "".
func (r *Result) IdentityFaction() string {
	if r.Identity == nil {
		return ""
	}
	return r.Identity.FactionCode
}

// Side returns the deck side derived from the identity.
func (r *Result) Side() string {
	if r.Identity != nil && r.Identity.SideCode != "" {
		return r.Identity.SideCode
	}
	return cards.FactionSide(r.IdentityFaction())
}

// Comparer compares decklists against a collection.
type Comparer struct {
	decks DecklistSource
	cards CardSource
	owned Availability
}

// NewComparer creates a comparer. cards may be nil, in which case
// requirements carry codes only.
func NewComparer(decks DecklistSource, cardSource CardSource, owned Availability) *Comparer {
	return &Comparer{decks: decks, cards: cardSource, owned: owned}
}

// Compare fetches a decklist and compares it. Fetch errors are returned
// unchanged.
func (c *Comparer) Compare(ctx context.Context, decklistID string) (*Result, error) {
	deck, err := c.decks.Decklist(ctx, decklistID)
	if err != nil {
		return nil, err
	}
	result := c.CompareCards(deck)
	if result.DecklistID == "" {
		result.DecklistID = decklistID
	}
	return result, nil
}

// CompareCards compares an already fetched decklist.
func (c *Comparer) CompareCards(deck *cards.Decklist) *Result {
	result := &Result{
		DecklistID:   deck.ID,
		DecklistName: deck.Name,
		Requirements: make([]CardRequirement, 0, len(deck.Cards)),
	}

	for _, entry := range deck.Cards {
		req := CardRequirement{Code: entry.Code, Required: entry.Quantity}

		if c.cards != nil {
			if card, ok := c.cards.Card(entry.Code); ok {
				req.Title = card.Title
				req.PackCode = card.PackCode
				req.PackName = c.cards.PackName(card.PackCode)
				req.TypeCode = card.TypeCode
				req.FactionCode = card.FactionCode
				req.ImageURL = card.ImageURL

				if card.IsIdentity() && result.Identity == nil {
					identity := card
					result.Identity = &identity
				}
			}
		}

		req.Owned = min(req.Required, c.owned.AvailableCount(entry.Code))
		req.Missing = req.Required - req.Owned

		result.Requirements = append(result.Requirements, req)
		result.Stats.TotalCards += req.Required
		result.Stats.OwnedCards += req.Owned
		result.Stats.MissingCards += req.Missing
	}

	result.Stats.CompletionPercentage = completion(result.Stats.OwnedCards, result.Stats.TotalCards)
	return result
}

func completion(owned, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(owned) / float64(total) * 100
}

// ProxyCards returns the requirements with at least one missing copy, in
// decklist order.
func ProxyCards(result *Result) []CardRequirement {
	var out []CardRequirement
	for _, req := range result.Requirements {
		if req.Missing > 0 {
			out = append(out, req)
		}
	}
	return out
}

// MissingCards maps card codes to missing copies.
func MissingCards(result *Result) map[string]int {
	out := make(map[string]int)
	for _, req := range result.Requirements {
		if req.Missing > 0 {
			out[req.Code] = req.Missing
		}
	}
	return out
}

// OwnedCards maps card codes to owned copies used by the deck.
func OwnedCards(result *Result) map[string]int {
	out := make(map[string]int)
	for _, req := range result.Requirements {
		if req.Owned > 0 {
			out[req.Code] = req.Owned
		}
	}
	return out
}

// FormatReport renders a plain-text report with the missing cards grouped
// by pack.
func FormatReport(result *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Decklist: %s", result.DecklistName)
	if result.DecklistID != "" {
		fmt.Fprintf(&b, " (%s)", result.DecklistID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Identity: %s\n", result.IdentityTitle())
	fmt.Fprintf(&b, "Completion: %.1f%% (%d/%d cards)\n",
		result.Stats.CompletionPercentage, result.Stats.OwnedCards, result.Stats.TotalCards)

	missing := ProxyCards(result)
	if len(missing) == 0 {
		b.WriteString("\nYou have all cards for this deck.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nMissing cards (%d):\n", result.Stats.MissingCards)
	for _, group := range groupByPack(missing) {
		fmt.Fprintf(&b, "  %s:\n", group.name)
		for _, req := range group.reqs {
			fmt.Fprintf(&b, "    %dx %s (%s)", req.Missing, req.DisplayName(), req.Code)
			if req.Owned > 0 {
				fmt.Fprintf(&b, " - own %d of %d", req.Owned, req.Required)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

type packGroup struct {
	name string
	reqs []CardRequirement
}

// groupByPack groups requirements by pack name, packs sorted by name and
// cards kept in decklist order.
func groupByPack(reqs []CardRequirement) []packGroup {
	index := make(map[string]int)
	var groups []packGroup
	for _, req := range reqs {
		name := req.PackName
		if name == "" {
			name = "Unknown pack"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, packGroup{name: name})
		}
		groups[i].reqs = append(groups[i].reqs, req)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}
