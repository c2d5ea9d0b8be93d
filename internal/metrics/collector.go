// Package metrics counts NetrunnerDB requests, cache lookups and per-deck
// processing time for the current run. A nil *Collector is valid and
// records nothing.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector accumulates run metrics. It is safe for concurrent use.
type Collector struct {
	RequestLatency *Histogram
	DeckLatency    *Histogram

	Requests       atomic.Uint64
	RequestErrors  atomic.Uint64
	Retries        atomic.Uint64
	CacheHits      atomic.Uint64
	CacheMisses    atomic.Uint64
	StaleFallbacks atomic.Uint64

	startTime time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		RequestLatency: NewHistogram(defaultMaxSamples),
		DeckLatency:    NewHistogram(defaultMaxSamples),
		startTime:      time.Now(),
	}
}

// RecordRequest records one API request including its retries.
func (c *Collector) RecordRequest(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.Requests.Add(1)
	if err != nil {
		c.RequestErrors.Add(1)
	}
	c.RequestLatency.Record(d)
}

// IncrementRetries counts a retried request attempt.
func (c *Collector) IncrementRetries() {
	if c == nil {
		return
	}
	c.Retries.Add(1)
}

// RecordCacheLookup counts a metadata cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Add(1)
	} else {
		c.CacheMisses.Add(1)
	}
}

// IncrementStaleFallbacks counts a failed fetch served from stale cache.
func (c *Collector) IncrementStaleFallbacks() {
	if c == nil {
		return
	}
	c.StaleFallbacks.Add(1)
}

// RecordDeck records the time spent processing one decklist.
func (c *Collector) RecordDeck(d time.Duration) {
	if c == nil {
		return
	}
	c.DeckLatency.Record(d)
}

// Stats is a point-in-time copy of a Collector.
type Stats struct {
	Requests       uint64
	RequestErrors  uint64
	Retries        uint64
	CacheHits      uint64
	CacheMisses    uint64
	StaleFallbacks uint64
	CacheHitRate   float64 // percentage
	RequestLatency LatencyStats
	DeckLatency    LatencyStats
	Uptime         time.Duration
}

// Stats returns a snapshot of the collector. A nil collector returns zero
// stats.
func (c *Collector) Stats() Stats {
	if c == nil {
		return Stats{}
	}

	hits := c.CacheHits.Load()
	misses := c.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return Stats{
		Requests:       c.Requests.Load(),
		RequestErrors:  c.RequestErrors.Load(),
		Retries:        c.Retries.Load(),
		CacheHits:      hits,
		CacheMisses:    misses,
		StaleFallbacks: c.StaleFallbacks.Load(),
		CacheHitRate:   hitRate,
		RequestLatency: c.RequestLatency.Snapshot(),
		DeckLatency:    c.DeckLatency.Snapshot(),
		Uptime:         time.Since(c.startTime).Round(time.Millisecond),
	}
}

// Empty reports whether nothing was recorded.
func (s Stats) Empty() bool {
	return s.Requests == 0 && s.CacheHits == 0 && s.CacheMisses == 0 && s.DeckLatency.Count == 0
}

// KeyVals returns the stats as alternating keys and values for structured
// logging.
func (s Stats) KeyVals() []any {
	return []any{
		"requests", s.Requests,
		"request_errors", s.RequestErrors,
		"retries", s.Retries,
		"request_p95_ms", s.RequestLatency.P95,
		"cache_hits", s.CacheHits,
		"cache_misses", s.CacheMisses,
		"stale_fallbacks", s.StaleFallbacks,
		"uptime", s.Uptime,
	}
}
