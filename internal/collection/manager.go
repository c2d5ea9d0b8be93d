package collection

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
)

// CardSource is the catalog view the engine needs. *cards.Index satisfies it.
type CardSource interface {
	Card(code string) (cards.Card, bool)
	PackCards(packCode string) []cards.Card
}

// PackProgress is the owned/total card count for a single pack.
type PackProgress struct {
	Owned int
	Total int
}

// CardDifference describes how a tracked card deviates from its packs.
type CardDifference struct {
	Expected   int
	Actual     int
	Difference int
}

// Statistics summarizes a collection.
type Statistics struct {
	UniqueCards  int
	TotalCards   int
	MissingCards int
	OwnedPacks   int
}

// Manager reconciles owned packs, per-card entries and missing copies into
// the counts the rest of the application uses. It is not safe for
// concurrent use.
type Manager struct {
	state  *State
	source CardSource
	path   string
}

// NewManager returns a manager over an empty collection. source may be nil,
// in which case expected counts are always 0.
func NewManager(source CardSource) *Manager {
	return NewManagerWithState(NewState(), source, "")
}

// NewManagerWithState returns a manager over an existing state that saves
// to path.
func NewManagerWithState(state *State, source CardSource, path string) *Manager {
	if state == nil {
		state = NewState()
	}
	return &Manager{state: state, source: source, path: path}
}

// Open loads the collection at path, or starts an empty one bound to path
// when the file does not exist yet.
func Open(path string, source CardSource) (*Manager, error) {
	if !Exists(path) {
		if err := checkExtension(path); err != nil {
			return nil, err
		}
		return NewManagerWithState(NewState(), source, path), nil
	}

	state, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewManagerWithState(state, source, path), nil
}

// State returns the underlying collection state.
func (m *Manager) State() *State { return m.state }

// Path returns the file the manager saves to.
func (m *Manager) Path() string { return m.path }

// SetSource attaches or replaces the catalog view.
func (m *Manager) SetSource(source CardSource) { m.source = source }

// Save writes the collection to its file.
func (m *Manager) Save() error {
	if m.path == "" {
		return ErrNoPath
	}
	return Save(m.state, m.path)
}

// AddPack marks a pack as owned. Adding an owned pack is a no-op.
func (m *Manager) AddPack(code string) {
	if code = strings.TrimSpace(code); code != "" {
		m.state.addPack(code)
	}
}

// RemovePack drops a pack from the owned set. Card entries and missing
// counts are left untouched.
func (m *Manager) RemovePack(code string) {
	m.state.removePack(strings.TrimSpace(code))
}

// HasPack reports whether a pack is owned.
func (m *Manager) HasPack(code string) bool {
	return m.state.HasPack(code)
}

// OwnedPacks returns the owned pack codes, sorted.
func (m *Manager) OwnedPacks() []string {
	return m.state.Packs()
}

// ExpectedCount returns the count implied by pack ownership alone.
func (m *Manager) ExpectedCount(code string) int {
	if m.source == nil {
		return 0
	}
	card, ok := m.source.Card(code)
	if !ok || !m.state.HasPack(card.PackCode) {
		return 0
	}
	return card.Quantity
}

// ActualCount returns the reconciled number of copies owned.
func (m *Manager) ActualCount(code string) int {
	e, ok := m.state.Entry(code)
	if ok && e.Kind == Override {
		return e.Value
	}

	actual := m.ExpectedCount(code)
	if ok && e.Kind == Diff {
		actual += e.Value
	}
	return max(0, actual)
}

// SetAbsoluteCount records n as the card's actual count. Setting 0 removes
// any override; a diff cancelling the pack count is kept instead when the
// card comes from an owned pack.
func (m *Manager) SetAbsoluteCount(code string, n int) error {
	if n < 0 {
		return negativeQuantity(code, "count", n)
	}
	m.setOverride(code, n)
	return nil
}

// ModifyCount applies a signed delta to the card's override or diff. The
// resulting actual count is floored at 0.
func (m *Manager) ModifyCount(code string, delta int, target Kind) error {
	switch target {
	case Override:
		base := m.ActualCount(code)
		m.setOverride(code, max(0, base+delta))
	case Diff:
		expected := m.ExpectedCount(code)
		diff := max(-expected, m.Difference(code)+delta)
		m.state.putEntry(code, Entry{Kind: Diff, Value: diff})
	default:
		return &ValidationError{Code: code, Field: "target", Value: int(target), Message: "unknown entry kind"}
	}
	return nil
}

// AddCard adds qty copies on top of the current actual count. For a card
// from an owned pack that count starts at the pack quantity.
func (m *Manager) AddCard(code string, qty int) error {
	if qty < 0 {
		return negativeQuantity(code, "quantity", qty)
	}
	return m.ModifyCount(code, qty, Override)
}

// RemoveCard removes up to qty copies from the current actual count.
func (m *Manager) RemoveCard(code string, qty int) error {
	if qty < 0 {
		return negativeQuantity(code, "quantity", qty)
	}
	return m.ModifyCount(code, -qty, Override)
}

// SetDifference records d as the card's deviation from its pack count,
// replacing any override.
func (m *Manager) SetDifference(code string, d int) {
	m.state.putEntry(code, Entry{Kind: Diff, Value: d})
}

// Difference returns actual minus expected for the card's current entry:
// the stored diff, or the override's distance from the pack count.
func (m *Manager) Difference(code string) int {
	e, ok := m.state.Entry(code)
	if !ok {
		return 0
	}
	if e.Kind == Diff {
		return e.Value
	}
	return e.Value - m.ExpectedCount(code)
}

// ModifyDifference adjusts the card's diff by delta. The stored diff never
// drops below minus the pack count, so a later increase counts up from 0.
func (m *Manager) ModifyDifference(code string, delta int) error {
	return m.ModifyCount(code, delta, Diff)
}

// AddMissing marks qty more copies of a card as lost.
func (m *Manager) AddMissing(code string, qty int) error {
	if qty < 0 {
		return negativeQuantity(code, "missing", qty)
	}
	m.state.putMissing(code, m.state.MissingCount(code)+qty)
	return nil
}

// RemoveMissing marks up to qty lost copies as found again.
func (m *Manager) RemoveMissing(code string, qty int) error {
	if qty < 0 {
		return negativeQuantity(code, "missing", qty)
	}
	m.state.putMissing(code, m.state.MissingCount(code)-qty)
	return nil
}

// MissingCount returns the number of copies marked lost.
func (m *Manager) MissingCount(code string) int {
	return m.state.MissingCount(code)
}

// HasCard reports whether at least qty copies are owned.
func (m *Manager) HasCard(code string, qty int) bool {
	return m.ActualCount(code) >= qty
}

// AvailableCount returns the copies that can actually be played.
func (m *Manager) AvailableCount(code string) int {
	return max(0, m.ActualCount(code)-m.state.MissingCount(code))
}

// AllOwned returns every card with a positive actual count.
func (m *Manager) AllOwned() map[string]int {
	owned := make(map[string]int)
	for _, code := range m.candidateCodes() {
		if n := m.ActualCount(code); n > 0 {
			owned[code] = n
		}
	}
	return owned
}

// PackSummary returns owned and total distinct cards for every pack with
// at least one owned card. Cards unknown to the catalog are skipped.
func (m *Manager) PackSummary() map[string]PackProgress {
	summary := make(map[string]PackProgress)
	if m.source == nil {
		return summary
	}

	for code := range m.AllOwned() {
		card, ok := m.source.Card(code)
		if !ok {
			continue
		}
		p, seen := summary[card.PackCode]
		if !seen {
			p.Total = len(m.source.PackCards(card.PackCode))
		}
		p.Owned++
		summary[card.PackCode] = p
	}
	return summary
}

// CardsWithDifferences returns every card whose actual count differs from
// its pack-derived count.
func (m *Manager) CardsWithDifferences() map[string]CardDifference {
	out := make(map[string]CardDifference)
	for _, code := range m.candidateCodes() {
		expected := m.ExpectedCount(code)
		actual := m.ActualCount(code)
		if expected != actual {
			out[code] = CardDifference{Expected: expected, Actual: actual, Difference: actual - expected}
		}
	}
	return out
}

// Statistics summarizes the collection.
func (m *Manager) Statistics() Statistics {
	owned := m.AllOwned()
	stats := Statistics{
		UniqueCards: len(owned),
		OwnedPacks:  len(m.state.packs),
	}
	for _, n := range owned {
		stats.TotalCards += n
	}
	for _, n := range m.state.missing {
		stats.MissingCards += n
	}
	return stats
}

// setOverride stores n as an override. When n is 0 and the packs still
// supply copies, a cancelling diff is stored so the actual count stays 0.
func (m *Manager) setOverride(code string, n int) {
	if n == 0 {
		if expected := m.ExpectedCount(code); expected > 0 {
			m.state.putEntry(code, Entry{Kind: Diff, Value: -expected})
			return
		}
	}
	m.state.putEntry(code, Entry{Kind: Override, Value: n})
}

// candidateCodes returns the tracked cards plus every card of an owned pack.
func (m *Manager) candidateCodes() []string {
	seen := make(map[string]struct{})
	for _, code := range m.state.trackedCodes() {
		seen[code] = struct{}{}
	}
	if m.source != nil {
		for _, pack := range m.state.Packs() {
			for _, card := range m.source.PackCards(pack) {
				seen[card.Code] = struct{}{}
			}
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
