package icon

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory cache when Max is left zero.
const DefaultCapacity = 500

// Ref is an opaque handle to a cached icon. Its value is the origin key the
// icon was stored under; consumers resolve it through the cache that produced
// it and must not interpret the string.
type Ref string

type entry struct {
	data      []byte
	writtenAt time.Time
}

// Cache is a process-wide, capacity-bounded favicon cache keyed by origin
// ("scheme://host"). When a Put pushes the cache over capacity the single
// entry with the oldest write time is evicted; the scan is linear, which is
// fine at this bound. Reads never refresh write times. An optional Store
// persists icon bytes across restarts.
type Cache struct {
	// Max is the entry capacity. Zero means DefaultCapacity.
	Max int
	// Store, when set, mirrors puts and serves misses.
	Store *Store
	// Now is the clock used for write stamps; nil means time.Now.
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Get returns the icon bytes for an origin, falling back to the persistent
// store on a memory miss. The second return is false when the icon is absent
// everywhere.
func (c *Cache) Get(origin string) ([]byte, bool) {
	c.mu.Lock()
	e, ok := c.entries[origin]
	c.mu.Unlock()
	if ok {
		return e.data, true
	}
	if c.Store != nil {
		if data, err := c.Store.Load(origin); err == nil && data != nil {
			return data, true
		}
	}
	return nil, false
}

// Put stores icon bytes under an origin and evicts the oldest entry when the
// capacity is exceeded. Store write failures are ignored; the memory cache is
// authoritative for the session.
func (c *Cache) Put(origin string, data []byte) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]entry)
	}
	c.entries[origin] = entry{data: data, writtenAt: now()}

	max := c.Max
	if max <= 0 {
		max = DefaultCapacity
	}
	var evicted string
	if len(c.entries) > max {
		evicted = c.oldestLocked()
		delete(c.entries, evicted)
	}
	c.mu.Unlock()

	if c.Store != nil {
		_ = c.Store.Save(origin, data)
		if evicted != "" {
			_ = c.Store.Delete(evicted)
		}
	}
}

// Len reports the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) oldestLocked() string {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.writtenAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.writtenAt
			first = false
		}
	}
	return oldestKey
}
