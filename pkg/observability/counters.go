package observability

import (
	"context"
	"maps"
	"sync"
	"time"
)

// OpStats counts one kind of stack transition.
type OpStats struct {
	Applied int `json:"applied"`
	Ignored int `json:"ignored"`
}

// Stats is a point-in-time copy of what a Counters has seen.
type Stats struct {
	Transitions map[string]OpStats `json:"transitions"`
	Stale       map[string]int     `json:"stale"`

	Layouts    int `json:"layouts"`
	LayoutHits int `json:"layout_hits"`

	Loads      int           `json:"loads"`
	LoadErrors int           `json:"load_errors"`
	LoadTime   time.Duration `json:"load_time_ns"`

	Updates        int `json:"updates"`
	UpdatesApplied int `json:"updates_applied"`

	CacheHits   map[string]int `json:"cache_hits"`
	CacheMisses map[string]int `json:"cache_misses"`
	CacheBytes  int            `json:"cache_bytes"`
}

// Counters implements every hook interface by tallying events in memory.
// It is safe for concurrent use.
type Counters struct {
	mu sync.Mutex
	s  Stats
}

// NewCounters returns empty counters.
func NewCounters() *Counters {
	return &Counters{s: Stats{
		Transitions: map[string]OpStats{},
		Stale:       map[string]int{},
		CacheHits:   map[string]int{},
		CacheMisses: map[string]int{},
	}}
}

// Install registers c as the menu, provider and cache hooks.
func (c *Counters) Install() {
	SetMenuHooks(c)
	SetProviderHooks(c)
	SetCacheHooks(c)
}

// Snapshot returns a copy of the current counts.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.s
	s.Transitions = maps.Clone(c.s.Transitions)
	s.Stale = maps.Clone(c.s.Stale)
	s.CacheHits = maps.Clone(c.s.CacheHits)
	s.CacheMisses = maps.Clone(c.s.CacheMisses)
	return s
}

func (c *Counters) OnTransition(op string, _ int, applied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.s.Transitions[op]
	if applied {
		t.Applied++
	} else {
		t.Ignored++
	}
	c.s.Transitions[op] = t
}

func (c *Counters) OnStaleResult(op string, _ int) {
	c.mu.Lock()
	c.s.Stale[op]++
	c.mu.Unlock()
}

func (c *Counters) OnLayout(_ int, cached bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Layouts++
	if cached {
		c.s.LayoutHits++
	}
}

func (c *Counters) OnLoadChildren(_ context.Context, _ string, _ int, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Loads++
	c.s.LoadTime += d
	if err != nil {
		c.s.LoadErrors++
	}
}

func (c *Counters) OnUpdate(_ context.Context, _, _ string, _ int, applied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Updates++
	if applied {
		c.s.UpdatesApplied++
	}
}

func (c *Counters) OnCacheHit(_ context.Context, keyType string) {
	c.mu.Lock()
	c.s.CacheHits[keyType]++
	c.mu.Unlock()
}

func (c *Counters) OnCacheMiss(_ context.Context, keyType string) {
	c.mu.Lock()
	c.s.CacheMisses[keyType]++
	c.mu.Unlock()
}

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.mu.Lock()
	c.s.CacheBytes += size
	c.mu.Unlock()
}
