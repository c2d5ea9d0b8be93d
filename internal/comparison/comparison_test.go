package comparison

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
)

type fakeDecks struct {
	decks map[string]*cards.Decklist
	err   error
}

func (f *fakeDecks) Decklist(_ context.Context, id string) (*cards.Decklist, error) {
	if f.err != nil {
		return nil, f.err
	}
	deck, ok := f.decks[id]
	if !ok {
		return nil, errors.New("decklist not found")
	}
	return deck, nil
}

func testIndex() *cards.Index {
	all := map[string]cards.Card{
		"01001": {Code: "01001", Title: "Noise", TypeCode: "identity", FactionCode: "anarch", SideCode: "runner", PackCode: "core", Quantity: 1},
		"01002": {Code: "01002", Title: "Deja Vu", TypeCode: "event", FactionCode: "anarch", SideCode: "runner", PackCode: "core", Quantity: 2},
		"02001": {Code: "02001", Title: "Whizzard", TypeCode: "identity", FactionCode: "anarch", SideCode: "runner", PackCode: "wla", Quantity: 1},
		"02003": {Code: "02003", Title: "Lucky Find", TypeCode: "event", FactionCode: "criminal", SideCode: "runner", PackCode: "wla", Quantity: 3},
	}
	packs := []cards.Pack{
		{Code: "core", Name: "Core Set"},
		{Code: "wla", Name: "What Lies Ahead"},
	}
	return cards.NewIndex(all, packs)
}

func TestCompareCardsScenario(t *testing.T) {
	index := testIndex()
	manager := collection.NewManager(index)
	require.NoError(t, manager.AddCard("01001", 2))

	deck := &cards.Decklist{
		ID:   "12345",
		Name: "Test Deck",
		Cards: []cards.DecklistEntry{
			{Code: "01001", Quantity: 3},
			{Code: "01002", Quantity: 2},
		},
	}

	result := NewComparer(nil, index, manager).CompareCards(deck)

	require.Len(t, result.Requirements, 2)
	assert.Equal(t, "01001", result.Requirements[0].Code)
	assert.Equal(t, 3, result.Requirements[0].Required)
	assert.Equal(t, 2, result.Requirements[0].Owned)
	assert.Equal(t, 1, result.Requirements[0].Missing)

	assert.Equal(t, "01002", result.Requirements[1].Code)
	assert.Equal(t, 2, result.Requirements[1].Required)
	assert.Equal(t, 0, result.Requirements[1].Owned)
	assert.Equal(t, 2, result.Requirements[1].Missing)

	assert.Equal(t, 5, result.Stats.TotalCards)
	assert.Equal(t, 2, result.Stats.OwnedCards)
	assert.Equal(t, 3, result.Stats.MissingCards)
	assert.InDelta(t, 40.0, result.Stats.CompletionPercentage, 0.0001)

	require.NotNil(t, result.Identity)
	assert.Equal(t, "Noise", result.IdentityTitle())
	assert.Equal(t, cards.SideRunner, result.Side())
}

func TestCompletionPercentage(t *testing.T) {
	index := testIndex()

	t.Run("empty decklist", func(t *testing.T) {
		result := NewComparer(nil, index, collection.NewManager(index)).CompareCards(&cards.Decklist{ID: "1"})
		assert.Equal(t, 0.0, result.Stats.CompletionPercentage)
		assert.Empty(t, ProxyCards(result))
	})

	t.Run("fully owned", func(t *testing.T) {
		manager := collection.NewManager(index)
		manager.AddPack("core")
		manager.AddPack("wla")

		deck := &cards.Decklist{Cards: []cards.DecklistEntry{{Code: "01002", Quantity: 2}, {Code: "02003", Quantity: 3}}}
		result := NewComparer(nil, index, manager).CompareCards(deck)

		assert.Equal(t, 100.0, result.Stats.CompletionPercentage)
		for _, req := range result.Requirements {
			assert.True(t, req.IsSatisfied(), "requirement %s should be satisfied", req.Code)
		}
	})

	t.Run("partial", func(t *testing.T) {
		manager := collection.NewManager(index)
		manager.AddPack("wla")

		deck := &cards.Decklist{Cards: []cards.DecklistEntry{{Code: "02003", Quantity: 3}, {Code: "01002", Quantity: 1}}}
		result := NewComparer(nil, index, manager).CompareCards(deck)

		assert.InDelta(t, 3.0/4.0*100, result.Stats.CompletionPercentage, 0.0001)
	})
}

func TestMissingReducesOwned(t *testing.T) {
	index := testIndex()
	manager := collection.NewManager(index)
	manager.AddPack("wla")
	require.NoError(t, manager.AddMissing("02003", 1))

	deck := &cards.Decklist{Cards: []cards.DecklistEntry{{Code: "02003", Quantity: 3}}}
	result := NewComparer(nil, index, manager).CompareCards(deck)

	assert.Equal(t, 3, manager.ActualCount("02003"))
	assert.Equal(t, 2, result.Requirements[0].Owned)
	assert.Equal(t, 1, result.Requirements[0].Missing)
}

func TestOwnedNeverExceedsRequired(t *testing.T) {
	index := testIndex()
	manager := collection.NewManager(index)
	require.NoError(t, manager.AddCard("01002", 10))

	deck := &cards.Decklist{Cards: []cards.DecklistEntry{{Code: "01002", Quantity: 2}}}
	result := NewComparer(nil, index, manager).CompareCards(deck)

	assert.Equal(t, 2, result.Requirements[0].Owned)
	assert.Equal(t, 0, result.Requirements[0].Missing)
}

func TestUnknownCardDegrades(t *testing.T) {
	index := testIndex()
	deck := &cards.Decklist{Cards: []cards.DecklistEntry{{Code: "99999", Quantity: 2}}}

	result := NewComparer(nil, index, collection.NewManager(index)).CompareCards(deck)

	require.Len(t, result.Requirements, 1)
	req := result.Requirements[0]
	assert.Equal(t, "99999", req.DisplayName())
	assert.Empty(t, req.PackName)
	assert.Equal(t, 2, req.Missing)
	assert.Nil(t, result.Identity)
	assert.Equal(t, "Unknown", result.IdentityTitle())
}

func TestCompareFetchesDecklist(t *testing.T) {
	index := testIndex()
	decks := &fakeDecks{decks: map[string]*cards.Decklist{
		"42": {Name: "Fetched", Cards: []cards.DecklistEntry{{Code: "02001", Quantity: 1}}},
	}}

	result, err := NewComparer(decks, index, collection.NewManager(index)).Compare(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", result.DecklistID)
	assert.Equal(t, "Fetched", result.DecklistName)
}

func TestCompareSurfacesFetchError(t *testing.T) {
	sentinel := errors.New("boom")
	decks := &fakeDecks{err: sentinel}

	result, err := NewComparer(decks, nil, collection.NewManager(nil)).Compare(context.Background(), "42")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, sentinel)
}

func TestProxyAndOwnedMaps(t *testing.T) {
	index := testIndex()
	manager := collection.NewManager(index)
	require.NoError(t, manager.AddCard("01002", 1))

	deck := &cards.Decklist{Cards: []cards.DecklistEntry{
		{Code: "02003", Quantity: 3},
		{Code: "01002", Quantity: 2},
		{Code: "01001", Quantity: 1},
	}}
	result := NewComparer(nil, index, manager).CompareCards(deck)

	proxies := ProxyCards(result)
	require.Len(t, proxies, 3)
	assert.Equal(t, []string{"02003", "01002", "01001"}, []string{proxies[0].Code, proxies[1].Code, proxies[2].Code})

	assert.Equal(t, map[string]int{"02003": 3, "01002": 1, "01001": 1}, MissingCards(result))
	assert.Equal(t, map[string]int{"01002": 1}, OwnedCards(result))
}

func TestFormatReport(t *testing.T) {
	index := testIndex()
	manager := collection.NewManager(index)
	require.NoError(t, manager.AddCard("01002", 1))

	deck := &cards.Decklist{ID: "7", Name: "Report Deck", Cards: []cards.DecklistEntry{
		{Code: "02001", Quantity: 1},
		{Code: "01002", Quantity: 2},
	}}
	report := FormatReport(NewComparer(nil, index, manager).CompareCards(deck))

	assert.Contains(t, report, "Decklist: Report Deck (7)")
	assert.Contains(t, report, "Identity: Whizzard")
	assert.Contains(t, report, "Completion: 33.3% (1/3 cards)")
	assert.Contains(t, report, "Core Set:")
	assert.Contains(t, report, "1x Deja Vu (01002) - own 1 of 2")
	assert.Contains(t, report, "What Lies Ahead:")
	assert.Less(t, strings.Index(report, "Core Set:"), strings.Index(report, "What Lies Ahead:"))
}

func TestFormatReportComplete(t *testing.T) {
	result := &Result{DecklistName: "Empty"}
	assert.Contains(t, FormatReport(result), "You have all cards for this deck.")
}
