// Package catalog serves NetrunnerDB card, pack and cycle metadata from an
// in-process memo, the SQLite cache and finally the API, in that order.
package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/metrics"
	"github.com/ramonehamilton/NRDB-Companion/internal/nrdb"
	"github.com/ramonehamilton/NRDB-Companion/internal/storage"
)

// API is the subset of the NetrunnerDB client the catalog uses.
// *nrdb.Client satisfies it.
type API interface {
	Cards(ctx context.Context) (map[string]cards.Card, error)
	Packs(ctx context.Context) ([]cards.Pack, error)
	CycleNames(ctx context.Context) (map[string]string, error)
	Decklist(ctx context.Context, id string) (*cards.Decklist, error)
}

// Service provides catalog lookups. It is safe for concurrent use.
type Service struct {
	api     API
	cache   *storage.Cache
	logger  *log.Logger
	metrics *metrics.Collector

	mu     sync.Mutex
	cards  map[string]cards.Card
	packs  []cards.Pack
	cycles map[string]string
	index  *cards.Index
}

// NewService creates a catalog service. cache and logger may be nil.
func NewService(api API, cache *storage.Cache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{api: api, cache: cache, logger: logger}
}

// SetMetrics records cache hits, misses and stale fallbacks into m.
func (s *Service) SetMetrics(m *metrics.Collector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// AllPacks returns every pack as published by NetrunnerDB.
func (s *Service) AllPacks(ctx context.Context) ([]cards.Pack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPacks(ctx)
}

// AllCards returns every card keyed by code.
func (s *Service) AllCards(ctx context.Context) (map[string]cards.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCards(ctx)
}

// Cycles returns the cycle code to name mapping.
func (s *Service) Cycles(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCycles(ctx)
}

// CardByCode returns a single card.
func (s *Service) CardByCode(ctx context.Context, code string) (cards.Card, error) {
	if err := nrdb.ValidateCardCode(code); err != nil {
		return cards.Card{}, err
	}
	all, err := s.AllCards(ctx)
	if err != nil {
		return cards.Card{}, err
	}
	card, ok := all[code]
	if !ok {
		return cards.Card{}, &nrdb.NotFoundError{Kind: "card", ID: code}
	}
	return card, nil
}

// PackByCode returns a single pack.
func (s *Service) PackByCode(ctx context.Context, code string) (cards.Pack, error) {
	if err := nrdb.ValidatePackCode(code); err != nil {
		return cards.Pack{}, err
	}
	packs, err := s.AllPacks(ctx)
	if err != nil {
		return cards.Pack{}, err
	}
	for _, p := range packs {
		if p.Code == code {
			return p, nil
		}
	}
	return cards.Pack{}, &nrdb.NotFoundError{Kind: "pack", ID: code}
}

// PacksByRelease returns packs with cycle names filled in, sorted by
// release date.
func (s *Service) PacksByRelease(ctx context.Context, newestFirst bool) ([]cards.Pack, error) {
	packs, err := s.AllPacks(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.Cycles(ctx)
	if err != nil {
		// Cycle names are cosmetic.
		s.logger.Warn("Cycle names unavailable", "err", err)
		names = nil
	}
	return cards.SortByRelease(enrich(packs, names), newestFirst), nil
}

// PacksByCycle returns packs grouped by cycle, newest cycle first.
func (s *Service) PacksByCycle(ctx context.Context) ([]cards.CycleGroup, error) {
	packs, err := s.AllPacks(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.Cycles(ctx)
	if err != nil {
		s.logger.Warn("Cycle names unavailable", "err", err)
		names = nil
	}
	return cards.GroupByCycle(packs, names), nil
}

// Decklist fetches a published decklist. Decklists are never cached.
func (s *Service) Decklist(ctx context.Context, id string) (*cards.Decklist, error) {
	s.logger.Debug("Fetching decklist", "id", id)
	return s.api.Decklist(ctx, id)
}

// Index returns an in-memory index over every card and pack.
func (s *Service) Index(ctx context.Context) (*cards.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index, nil
	}

	all, err := s.loadCards(ctx)
	if err != nil {
		return nil, err
	}
	packs, err := s.loadPacks(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.loadCycles(ctx)
	if err != nil {
		s.logger.Warn("Cycle names unavailable", "err", err)
	}

	s.index = cards.NewIndex(all, enrich(packs, names))
	return s.index, nil
}

// Refresh drops the in-process memo and the persistent cache so the next
// lookup goes to the API.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = nil
	s.packs = nil
	s.cycles = nil
	s.index = nil

	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// loadPacks must be called with s.mu held.
func (s *Service) loadPacks(ctx context.Context) ([]cards.Pack, error) {
	if s.packs != nil {
		return s.packs, nil
	}

	packs, err := load(ctx, s, storage.KindPacks, "", s.api.Packs, cards.NewestRelease)
	if err != nil {
		return nil, err
	}
	s.packs = packs
	return packs, nil
}

// loadCards must be called with s.mu held. Cached cards are refetched when
// the pack list shows a newer release than the one they were fetched for.
func (s *Service) loadCards(ctx context.Context) (map[string]cards.Card, error) {
	if s.cards != nil {
		return s.cards, nil
	}

	packs, err := s.loadPacks(ctx)
	if err != nil {
		return nil, err
	}
	newest := cards.NewestRelease(packs)

	all, err := load(ctx, s, storage.KindCards, newest, s.api.Cards, func(map[string]cards.Card) string {
		return newest
	})
	if err != nil {
		return nil, err
	}
	s.cards = all
	return all, nil
}

// loadCycles must be called with s.mu held.
func (s *Service) loadCycles(ctx context.Context) (map[string]string, error) {
	if s.cycles != nil {
		return s.cycles, nil
	}

	names, err := load(ctx, s, storage.KindCycles, "", s.api.CycleNames, func(map[string]string) string { return "" })
	if err != nil {
		return nil, err
	}
	s.cycles = names
	return names, nil
}

// load reads kind from the cache, fetching and storing it when the cache
// misses or is stale. When the fetch fails, stale cached data is used.
func load[T any](ctx context.Context, s *Service, kind, fingerprint string, fetch func(context.Context) (T, error), fingerprintOf func(T) string) (T, error) {
	var cached T
	lookup := storage.Lookup{Status: storage.Miss}

	if s.cache != nil {
		var err error
		lookup, err = s.cache.Get(ctx, kind, &cached, fingerprint)
		if err != nil {
			s.logger.Warn("Cache read failed", "kind", kind, "err", err)
			lookup.Status = storage.Miss
		}
		s.metrics.RecordCacheLookup(lookup.Status == storage.Fresh)
		if lookup.Status == storage.Fresh {
			s.logger.Debug("Using cached catalog data", "kind", kind, "fetched_at", lookup.FetchedAt)
			return cached, nil
		}
	}

	s.logger.Debug("Fetching catalog data", "kind", kind, "cache", lookup.Status)
	fresh, err := fetch(ctx)
	if err != nil {
		if lookup.Status == storage.Stale {
			s.metrics.IncrementStaleFallbacks()
			s.logger.Warn("Fetch failed, using stale cache", "kind", kind, "fetched_at", lookup.FetchedAt, "err", err)
			return cached, nil
		}
		var zero T
		return zero, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, kind, fresh, fingerprintOf(fresh)); err != nil {
			s.logger.Warn("Cache write failed", "kind", kind, "err", err)
		}
	}
	return fresh, nil
}

// enrich returns copies of packs with Cycle set from names where known.
func enrich(packs []cards.Pack, names map[string]string) []cards.Pack {
	out := make([]cards.Pack, len(packs))
	for i, p := range packs {
		if name, ok := names[p.CycleCode]; ok {
			p.Cycle = name
		}
		out[i] = p
	}
	return out
}
