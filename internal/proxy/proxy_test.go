package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/comparison"
)

func testIndex() *cards.Index {
	all := map[string]cards.Card{
		"01001": {Code: "01001", Title: "Noise", TypeCode: "identity", FactionCode: "anarch", PackCode: "core", Quantity: 1},
		"01002": {Code: "01002", Title: "Deja Vu", TypeCode: "event", FactionCode: "anarch", PackCode: "core", Quantity: 2},
		"01003": {Code: "01003", Title: "Demolition Run", TypeCode: "event", FactionCode: "anarch", PackCode: "core", Quantity: 2},
		"02003": {Code: "02003", Title: "Lucky Find", TypeCode: "event", FactionCode: "criminal", PackCode: "wla", Quantity: 3},
	}
	return cards.NewIndex(all, []cards.Pack{
		{Code: "core", Name: "Core Set"},
		{Code: "wla", Name: "What Lies Ahead"},
	})
}

func compare(t *testing.T, m *collection.Manager, index *cards.Index, entries ...cards.DecklistEntry) *comparison.Result {
	t.Helper()
	return comparison.NewComparer(nil, index, m).CompareCards(&cards.Decklist{ID: "1", Name: "Deck", Cards: entries})
}

func TestSelect(t *testing.T) {
	index := testIndex()
	m := collection.NewManager(index)
	require.NoError(t, m.AddCard("01002", 1))
	require.NoError(t, m.AddCard("01001", 1))

	result := compare(t, m, index,
		cards.DecklistEntry{Code: "02003", Quantity: 3},
		cards.DecklistEntry{Code: "01001", Quantity: 1},
		cards.DecklistEntry{Code: "01002", Quantity: 3},
	)

	selected := Select(result)
	require.Len(t, selected, 2)

	assert.Equal(t, "02003", selected[0].Code)
	assert.Equal(t, 3, selected[0].Copies)
	assert.Equal(t, "What Lies Ahead", selected[0].PackName)
	assert.Equal(t, "criminal", selected[0].FactionCode)

	assert.Equal(t, "01002", selected[1].Code)
	assert.Equal(t, 3, selected[1].Required)
	assert.Equal(t, 1, selected[1].Owned)
	assert.Equal(t, 2, selected[1].Copies)

	assert.Equal(t, 5, TotalCopies(selected))
}

func TestSelectNothingMissing(t *testing.T) {
	index := testIndex()
	m := collection.NewManager(index)
	m.AddPack("core")

	result := compare(t, m, index, cards.DecklistEntry{Code: "01002", Quantity: 2})
	assert.Empty(t, Select(result))
}

func TestAll(t *testing.T) {
	index := testIndex()
	m := collection.NewManager(index)
	m.AddPack("core")

	result := compare(t, m, index,
		cards.DecklistEntry{Code: "01002", Quantity: 2},
		cards.DecklistEntry{Code: "02003", Quantity: 1},
	)

	all := All(result)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Copies)
	assert.Equal(t, 1, all[1].Copies)
}

func TestForPack(t *testing.T) {
	index := testIndex()
	m := collection.NewManager(index)
	require.NoError(t, m.AddCard("01002", 1))

	list := ForPack("core", index, m)
	require.Len(t, list, 2)
	assert.Equal(t, "01001", list[0].Code)
	assert.Equal(t, "01003", list[1].Code)
	for _, card := range list {
		assert.Equal(t, 1, card.Copies)
		assert.Equal(t, "Core Set", card.PackName)
	}

	assert.Empty(t, ForPack("unknown", index, m))
}

func TestExpand(t *testing.T) {
	list := []Card{
		{Code: "b", Title: "Zeta", PackName: "Core Set", Copies: 2},
		{Code: "a", Title: "Alpha", PackName: "What Lies Ahead", Copies: 1},
		{Code: "c", Title: "Beta", PackName: "Core Set", Copies: 1},
		{Code: "d", Title: "Skipped", Copies: 0},
	}

	plain := Expand(list, false)
	require.Len(t, plain, 4)
	assert.Equal(t, []string{"b", "b", "a", "c"}, codes(plain))

	grouped := Expand(list, true)
	assert.Equal(t, []string{"c", "b", "b", "a"}, codes(grouped))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Noise", Card{Code: "01001", Title: "Noise"}.Label())
	assert.Equal(t, "01001", Card{Code: "01001"}.Label())
}

func codes(list []Card) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Code
	}
	return out
}
