package gallery

import "container/list"

// MemoryCache is a bounded LRU of rendered thumbnails. It is owned by the
// UI goroutine: every Get and Put happens on the render path (cross-thread
// results arrive through the pipeline's completion queue first), so it
// carries no lock on purpose.
type MemoryCache struct {
	capacity int
	order    *list.List // front = most recently used
	entries  map[Key]*list.Element
}

type memEntry struct {
	key   Key
	thumb *Thumbnail
}

func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultOptions().CacheCapacity
	}
	return &MemoryCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[Key]*list.Element, capacity),
	}
}

// Get returns the cached thumbnail and promotes it to most recently used,
// or nil on a miss.
func (c *MemoryCache) Get(key Key) *Thumbnail {
	el, ok := c.entries[key]
	if !ok {
		return nil
	}
	c.order.MoveToFront(el)
	return el.Value.(*memEntry).thumb
}

// Put inserts or overwrites, promotes the entry, then evicts the least
// recently used entries while the cache exceeds its capacity.
func (c *MemoryCache) Put(key Key, thumb *Thumbnail) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*memEntry).thumb = thumb
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&memEntry{key: key, thumb: thumb})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memEntry).key)
	}
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	return c.order.Len()
}
