// Package deckimport reads decklists from NetrunnerDB URLs and from local
// text files.
package deckimport

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
)

// Resolver looks up cards by code or title. *cards.Index satisfies it.
type Resolver interface {
	Card(code string) (cards.Card, bool)
	FindByTitle(title string) (cards.Card, bool)
}

// ParsedCard represents a single line of a text decklist.
type ParsedCard struct {
	Line     int
	Quantity int
	Name     string
	Code     string // Resolved card code, empty when unresolved
}

// ParseResult contains the result of parsing a text decklist.
type ParseResult struct {
	Deck     *cards.Decklist
	Cards    []*ParsedCard
	Warnings []string
}

var (
	// "3x Sure Gamble", "3 Sure Gamble", "3 30010"
	leadingQuantityRegex = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.+)$`)
	// "Sure Gamble x3"
	trailingQuantityRegex = regexp.MustCompile(`^(.+?)\s+[xX](\d+)$`)
	cardCodeRegex         = regexp.MustCompile(`^\d{5}$`)
)

// Parser handles text decklist parsing.
type Parser struct {
	resolver Resolver
}

// NewParser creates a parser that resolves names against resolver.
func NewParser(resolver Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// ParseFile parses a text decklist. The deck is named after the file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read decklist: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.Parse(string(data), name)
}

// Parse parses decklist text. Blank lines and lines starting with '#' or
// "//" are ignored. Lines that cannot be parsed or resolved become
// warnings; a deck without any resolved card is an error.
func (p *Parser) Parse(input, name string) (*ParseResult, error) {
	result := &ParseResult{
		Deck: &cards.Decklist{ID: Slug(name), Name: name},
	}

	positions := make(map[string]int)
	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		parsed, ok := parseLine(line)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: Could not parse '%s'", lineNo, line))
			continue
		}
		parsed.Line = lineNo
		result.Cards = append(result.Cards, parsed)

		card, ok := p.resolve(parsed.Name)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: Card '%s' not found", lineNo, parsed.Name))
			continue
		}
		parsed.Code = card.Code

		if i, seen := positions[card.Code]; seen {
			result.Deck.Cards[i].Quantity += parsed.Quantity
			continue
		}
		positions[card.Code] = len(result.Deck.Cards)
		result.Deck.Cards = append(result.Deck.Cards, cards.DecklistEntry{Code: card.Code, Quantity: parsed.Quantity})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decklist: %w", err)
	}

	if len(result.Deck.Cards) == 0 {
		return result, fmt.Errorf("no cards found in decklist")
	}
	return result, nil
}

func parseLine(line string) (*ParsedCard, bool) {
	if m := leadingQuantityRegex.FindStringSubmatch(line); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			return nil, false
		}
		return &ParsedCard{Quantity: qty, Name: strings.TrimSpace(m[2])}, true
	}
	if m := trailingQuantityRegex.FindStringSubmatch(line); m != nil {
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			return nil, false
		}
		return &ParsedCard{Quantity: qty, Name: strings.TrimSpace(m[1])}, true
	}
	return nil, false
}

func (p *Parser) resolve(name string) (cards.Card, bool) {
	if p.resolver == nil {
		return cards.Card{}, false
	}
	if cardCodeRegex.MatchString(name) {
		return p.resolver.Card(name)
	}
	return p.resolver.FindByTitle(name)
}
