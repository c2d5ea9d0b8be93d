package deckimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
)

func testIndex() *cards.Index {
	return cards.NewIndex(map[string]cards.Card{
		"30010": {Code: "30010", Title: "Sure Gamble", PackCode: "sg"},
		"30001": {Code: "30001", Title: "Az McCaffrey: Mechanical Prodigy", TypeCode: "identity", PackCode: "sg"},
		"30034": {Code: "30034", Title: "Diesel", PackCode: "sg"},
	}, []cards.Pack{{Code: "sg", Name: "System Gateway"}})
}

func TestParse(t *testing.T) {
	input := `# Az starter
1 Az McCaffrey: Mechanical Prodigy
3x Sure Gamble
Diesel x2

// comments are skipped
1 30034
`
	result, err := NewParser(testIndex()).Parse(input, "My Az Deck")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if result.Deck.Name != "My Az Deck" || result.Deck.ID != "my-az-deck" {
		t.Errorf("unexpected deck identity: %q / %q", result.Deck.Name, result.Deck.ID)
	}

	want := []cards.DecklistEntry{
		{Code: "30001", Quantity: 1},
		{Code: "30010", Quantity: 3},
		{Code: "30034", Quantity: 3},
	}
	if len(result.Deck.Cards) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), result.Deck.Cards)
	}
	for i, w := range want {
		if result.Deck.Cards[i] != w {
			t.Errorf("entry %d = %+v, want %+v", i, result.Deck.Cards[i], w)
		}
	}

	if len(result.Cards) != 4 {
		t.Errorf("expected 4 parsed lines, got %d", len(result.Cards))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestParseCaseInsensitiveTitles(t *testing.T) {
	result, err := NewParser(testIndex()).Parse("2 sure gamble", "deck")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if result.Deck.Cards[0].Code != "30010" {
		t.Errorf("expected 30010, got %s", result.Deck.Cards[0].Code)
	}
}

func TestParseWarnings(t *testing.T) {
	input := "3 Sure Gamble\nnot a card line\n2 Unknown Card\n0 Diesel"
	result, err := NewParser(testIndex()).Parse(input, "deck")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(result.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", result.Warnings)
	}
	if len(result.Deck.Cards) != 1 {
		t.Errorf("expected 1 resolved entry, got %+v", result.Deck.Cards)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := NewParser(testIndex()).Parse("# nothing here\n\n", "deck"); err == nil {
		t.Error("expected error for decklist without cards")
	}
	if _, err := NewParser(nil).Parse("3 Sure Gamble", "deck"); err == nil {
		t.Error("expected error when nothing can be resolved")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gateway Runner.txt")
	if err := os.WriteFile(path, []byte("3 Sure Gamble\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewParser(testIndex()).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if result.Deck.Name != "Gateway Runner" {
		t.Errorf("expected deck named after file, got %q", result.Deck.Name)
	}

	if _, err := NewParser(testIndex()).ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
