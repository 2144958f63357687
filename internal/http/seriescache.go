package http

import (
	"container/list"
	"sync"
	"time"

	"cruscotto/internal/core"
)

// seriesEntry is one chart's fetched rows together with the window they
// cover. Rows for a wider window than a request needs are reusable; the
// aligner filters by range.
type seriesEntry struct {
	window core.DateRange
	rows   []core.RawPoint
}

// seriesCache keeps per-chart fetched windows with TTL and size-based
// LRU eviction. Each chart also carries a monotonic fetch sequence: a
// store with a stale sequence is discarded, so a slower fetch triggered
// by an older user input can never overwrite a fresher window.
type seriesCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	seqs    map[string]uint64
}

type seriesItem struct {
	key       string
	entry     seriesEntry
	expiresAt time.Time
}

func newSeriesCache(maxSize int, ttl time.Duration) *seriesCache {
	return &seriesCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		seqs:    make(map[string]uint64),
	}
}

func (c *seriesCache) Get(chartID string) (seriesEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[chartID]
	if !exists {
		return seriesEntry{}, false
	}

	item := elem.Value.(*seriesItem)
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return seriesEntry{}, false
	}

	c.lru.MoveToFront(elem)
	return item.entry, true
}

// Begin registers an outbound fetch for the chart and returns its
// sequence number. Call Store with the same number when the fetch
// completes.
func (c *seriesCache) Begin(chartID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seqs[chartID]++
	return c.seqs[chartID]
}

// Store caches the entry unless a newer fetch has begun for the chart
// since seq was issued. Reports whether the entry was kept.
func (c *seriesCache) Store(chartID string, seq uint64, entry seriesEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seqs[chartID] {
		return false
	}

	item := &seriesItem{
		key:       chartID,
		entry:     entry,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[chartID]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return true
	}

	elem := c.lru.PushFront(item)
	c.items[chartID] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return true
}

// Invalidate drops the chart's cached window. Bumping the sequence also
// voids any fetch still in flight.
func (c *seriesCache) Invalidate(chartID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seqs[chartID]++
	if elem, exists := c.items[chartID]; exists {
		c.removeElement(elem)
	}
}

// InvalidateAll drops every cached window.
func (c *seriesCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		c.seqs[key]++
	}
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *seriesCache) removeElement(elem *list.Element) {
	item := elem.Value.(*seriesItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *seriesCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*seriesItem)
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}
