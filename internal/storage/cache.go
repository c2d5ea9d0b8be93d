package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long catalog metadata is considered fresh.
const DefaultTTL = 24 * time.Hour

// Cache kinds stored by the catalog.
const (
	KindCards  = "cards"
	KindPacks  = "packs"
	KindCycles = "cycles"
)

// Clock supplies the current time. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Status is the outcome of a cache lookup.
type Status int

const (
	// Miss means nothing is cached for the kind.
	Miss Status = iota
	// Stale means a payload exists but is past its TTL or was fetched for
	// an older catalog fingerprint.
	Stale
	// Fresh means the payload can be used as is.
	Fresh
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Lookup describes a cached entry.
type Lookup struct {
	Status      Status
	FetchedAt   time.Time
	Fingerprint string
}

// EntryStats describes one cached kind.
type EntryStats struct {
	Kind        string
	Bytes       int64
	FetchedAt   time.Time
	Fingerprint string
	Fresh       bool
}

// Cache stores catalog payloads with a time-to-live and a fingerprint.
type Cache struct {
	db    *DB
	clock Clock
	ttl   time.Duration
}

// NewCache creates a cache over db. A nil clock uses the wall clock and a
// non-positive ttl uses DefaultTTL.
func NewCache(db *DB, clock Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{db: db, clock: clock, ttl: ttl}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Put stores payload under kind, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, kind string, payload any, fingerprint string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s cache entry: %w", kind, err)
	}

	_, err = c.db.Conn().ExecContext(ctx, `
		INSERT INTO catalog_entries (kind, payload, fetched_at, fingerprint)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			fingerprint = excluded.fingerprint
	`, kind, data, c.clock.Now().UnixNano(), fingerprint)
	if err != nil {
		return fmt.Errorf("failed to store %s cache entry: %w", kind, err)
	}
	return nil
}

// Get decodes the cached payload for kind into dest. dest is filled for
// Fresh and Stale results so callers can fall back to stale data.
//
// fingerprint is compared with the one stored by Put when both are
// non-empty; a mismatch makes the entry stale.
func (c *Cache) Get(ctx context.Context, kind string, dest any, fingerprint string) (Lookup, error) {
	var (
		data      []byte
		fetchedAt int64
		stored    string
	)
	err := c.db.Conn().QueryRowContext(ctx,
		`SELECT payload, fetched_at, fingerprint FROM catalog_entries WHERE kind = ?`, kind,
	).Scan(&data, &fetchedAt, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return Lookup{Status: Miss}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to read %s cache entry: %w", kind, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A payload we cannot decode is as good as absent.
		return Lookup{Status: Miss}, nil
	}

	lookup := Lookup{
		Status:      Fresh,
		FetchedAt:   time.Unix(0, fetchedAt),
		Fingerprint: stored,
	}
	if !c.fresh(lookup.FetchedAt) || (fingerprint != "" && stored != "" && fingerprint != stored) {
		lookup.Status = Stale
	}
	return lookup, nil
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	return c.clock.Now().Sub(fetchedAt) < c.ttl
}

// Invalidate removes the entry for kind.
func (c *Cache) Invalidate(ctx context.Context, kind string) error {
	if _, err := c.db.Conn().ExecContext(ctx, `DELETE FROM catalog_entries WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("failed to invalidate %s cache entry: %w", kind, err)
	}
	return nil
}

// Clear removes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.Conn().ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats returns one row per cached kind, ordered by kind.
func (c *Cache) Stats(ctx context.Context) ([]EntryStats, error) {
	rows, err := c.db.Conn().QueryContext(ctx,
		`SELECT kind, length(payload), fetched_at, fingerprint FROM catalog_entries ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []EntryStats
	for rows.Next() {
		var (
			s         EntryStats
			fetchedAt int64
		)
		if err := rows.Scan(&s.Kind, &s.Bytes, &fetchedAt, &s.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan cache stats: %w", err)
		}
		s.FetchedAt = time.Unix(0, fetchedAt)
		s.Fresh = c.fresh(s.FetchedAt)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
