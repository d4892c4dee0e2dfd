package filter

import (
	"container/list"
	"sync"
)

// lruCache is a small thread-safe LRU cache for compiled filters.
type lruCache struct {
	mu        sync.Mutex
	size      int
	evictList *list.List
	items     map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value any
}

func newLRUCache(size int) *lruCache {
	return &lruCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// Get retrieves a value and marks it as recently used.
func (c *lruCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.items[key]
	if !exists {
		return nil, false
	}

	c.evictList.MoveToFront(node)
	return node.Value.(*cacheEntry).value, true
}

// Put adds or updates a value, evicting the least recently used entry
// when the cache is full.
func (c *lruCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.items[key]; exists {
		c.evictList.MoveToFront(node)
		node.Value.(*cacheEntry).value = value
		return
	}

	node := c.evictList.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = node

	if c.evictList.Len() > c.size {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Clear removes all entries.
func (c *lruCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Size returns the number of cached entries.
func (c *lruCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
