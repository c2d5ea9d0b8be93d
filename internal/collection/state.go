package collection

import "sort"

// Kind tags how a card's actual count is tracked.
type Kind int

const (
	// Override is an absolute count that supersedes pack ownership.
	Override Kind = iota + 1
	// Diff is a signed delta applied on top of the pack-derived count.
	Diff
)

func (k Kind) String() string {
	switch k {
	case Override:
		return "override"
	case Diff:
		return "diff"
	default:
		return "unknown"
	}
}

// Entry is the single count record kept for a card. A card never has both
// an override and a diff.
type Entry struct {
	Kind  Kind
	Value int
}

// State is the durable ownership state of a collection. The zero value is
// not usable; call NewState.
//
// All three maps are sparse: an absent key means no override or diff and
// zero missing copies.
type State struct {
	packs   map[string]struct{}
	entries map[string]Entry
	missing map[string]int
}

// NewState returns an empty collection state.
func NewState() *State {
	return &State{
		packs:   make(map[string]struct{}),
		entries: make(map[string]Entry),
		missing: make(map[string]int),
	}
}

// Packs returns the owned pack codes, sorted.
func (s *State) Packs() []string {
	out := make([]string, 0, len(s.packs))
	for code := range s.packs {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// HasPack reports whether a pack is owned.
func (s *State) HasPack(code string) bool {
	_, ok := s.packs[code]
	return ok
}

// Entry returns the count entry for a card, if any.
func (s *State) Entry(code string) (Entry, bool) {
	e, ok := s.entries[code]
	return e, ok
}

// Overrides returns a copy of every override entry.
func (s *State) Overrides() map[string]int {
	return s.byKind(Override)
}

// Diffs returns a copy of every diff entry.
func (s *State) Diffs() map[string]int {
	return s.byKind(Diff)
}

func (s *State) byKind(kind Kind) map[string]int {
	out := make(map[string]int)
	for code, e := range s.entries {
		if e.Kind == kind {
			out[code] = e.Value
		}
	}
	return out
}

// Missing returns a copy of the missing card counts.
func (s *State) Missing() map[string]int {
	out := make(map[string]int, len(s.missing))
	for code, n := range s.missing {
		out[code] = n
	}
	return out
}

// MissingCount returns the number of copies of a card marked lost.
func (s *State) MissingCount(code string) int {
	return s.missing[code]
}

// trackedCodes returns every card code with an entry.
func (s *State) trackedCodes() []string {
	out := make([]string, 0, len(s.entries))
	for code := range s.entries {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (s *State) addPack(code string) {
	s.packs[code] = struct{}{}
}

func (s *State) removePack(code string) {
	delete(s.packs, code)
}

// putEntry is the only writer of the entries map. It enforces the sparse
// contract: overrides must be positive and diffs non-zero, anything else
// removes the key.
func (s *State) putEntry(code string, e Entry) {
	switch {
	case e.Kind == Override && e.Value > 0:
		s.entries[code] = e
	case e.Kind == Diff && e.Value != 0:
		s.entries[code] = e
	default:
		delete(s.entries, code)
	}
}

// putMissing is the only writer of the missing map. Values at or below zero
// remove the key.
func (s *State) putMissing(code string, n int) {
	if n <= 0 {
		delete(s.missing, code)
		return
	}
	s.missing[code] = n
}
