// Package cache provides a byte-bounded LRU for decoded block file records.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU maps record offsets to decoded record data. Each entry is charged
// len(value) bytes and the least recently used entries are evicted once
// usage exceeds the capacity. It is safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity uint64
	usage    uint64
	table    map[int64]*list.Element
	order    *list.List

	hits   atomic.Uint64
	misses atomic.Uint64
}

type entry struct {
	key   int64
	value []byte
}

// NewLRU returns an LRU holding at most capacity bytes. A zero capacity
// caches nothing.
func NewLRU(capacity uint64) *LRU {
	return &LRU{
		capacity: capacity,
		table:    make(map[int64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value stored for key. The slice is shared with the
// cache and must not be modified.
func (c *LRU) Get(key int64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.table[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// Add stores value under key, replacing any previous value. Values larger
// than the capacity are not stored.
func (c *LRU) Add(key int64, value []byte) {
	charge := uint64(len(value))

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.table[key]; ok {
		c.remove(elem)
	}
	if charge > c.capacity {
		return
	}
	for c.usage+charge > c.capacity {
		c.remove(c.order.Back())
	}
	c.table[key] = c.order.PushFront(&entry{key: key, value: value})
	c.usage += charge
}

func (c *LRU) remove(elem *list.Element) {
	e := c.order.Remove(elem).(*entry)
	delete(c.table, e.key)
	c.usage -= uint64(len(e.value))
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Usage returns the bytes currently charged.
func (c *LRU) Usage() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// Capacity returns the byte limit.
func (c *LRU) Capacity() uint64 {
	return c.capacity
}

// Stats returns the hit and miss counts.
func (c *LRU) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRate returns hits/(hits+misses), or 0 before the first lookup.
func (c *LRU) HitRate() float64 {
	hits, misses := c.Stats()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
