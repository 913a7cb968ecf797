// Package cache provides a generic LRU cache with optional TTL, used for
// hot exchange-rate lookups and memoized conversion results.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called when an entry is evicted or replaced out of the
	// cache. It runs under the cache lock; keep it cheap.
	OnEvict func(key, value any)
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	cfg       Config
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// New creates an LRU cache with the given configuration.
func New[K comparable, V any](cfg Config) *LRU[K, V] {
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	return &LRU[K, V]{
		cfg:       cfg,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a value, refreshing its recency. Expired entries are
// removed on access and reported as misses.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if c.cfg.TTL > 0 && time.Now().After(e.expiresAt) {
		c.removeElement(elem)
		c.stats.Misses++
		return zero, false
	}

	c.evictList.MoveToFront(elem)
	c.stats.Hits++
	return e.value, true
}

// Put stores a value, evicting the least recently used entry when the
// cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(elem)
		e := elem.Value.(*entry[K, V])
		e.value = value
		if c.cfg.TTL > 0 {
			e.expiresAt = time.Now().Add(c.cfg.TTL)
		}
		return
	}

	e := &entry[K, V]{key: key, value: value}
	if c.cfg.TTL > 0 {
		e.expiresAt = time.Now().Add(c.cfg.TTL)
	}
	c.entries[key] = c.evictList.PushFront(e)

	if c.cfg.MaxSize > 0 && c.evictList.Len() > c.cfg.MaxSize {
		if oldest := c.evictList.Back(); oldest != nil {
			c.removeElement(oldest)
			c.stats.Evictions++
		}
	}
}

// Remove drops a key from the cache.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
}

// Len returns the number of entries in the cache.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns a snapshot of cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.cfg.MaxSize
	return s
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	e := elem.Value.(*entry[K, V])
	delete(c.entries, e.key)
	if c.cfg.OnEvict != nil {
		c.cfg.OnEvict(e.key, e.value)
	}
}
