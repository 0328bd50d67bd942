package tts

import (
	"container/list"
	"fmt"
	"strconv"
	"sync"

	"github.com/murmurfm/murmur/tts/audio"
)

// DefaultCacheCapacity is the default number of generated clips retained.
const DefaultCacheCapacity = 50

// ReleaseFunc is invoked when a clip leaves the cache (eviction, Delete,
// Clear) so its underlying resource can be freed. A clip handed out by Get
// stays valid for an in-flight playback even after release; release only
// severs the cache's reference.
type ReleaseFunc func(key string, clip *audio.Clip)

// Cache is a content-addressed store for generated audio, keyed by
// (provider, voice, text) and bounded by entry count with strict
// least-recently-used eviction. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	release  ReleaseFunc
}

type cacheEntry struct {
	key  string
	clip *audio.Clip
}

// NewCache creates a cache holding at most capacity entries. release may
// be nil.
func NewCache(capacity int, release ReleaseFunc) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		release:  release,
	}
}

// CacheKey builds the deterministic key for one (provider, voice, text)
// triple. The text component is a djb2 hash: cheap, stable, and collision
// tolerance is acceptable for a best-effort cache.
func CacheKey(provider ProviderType, voiceID, text string) string {
	return fmt.Sprintf("%s:%s:%s", provider, voiceID, hashText(text))
}

// hashText is djb2 over the raw bytes, rendered in base 36.
func hashText(text string) string {
	hash := uint32(5381)
	for i := 0; i < len(text); i++ {
		hash = hash<<5 + hash + uint32(text[i])
	}
	return strconv.FormatUint(uint64(hash), 36)
}

// Get returns the cached clip for key, refreshing its LRU position.
func (c *Cache) Get(key string) (*audio.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).clip, true
}

// Set stores a clip under key. Updating an existing key replaces the clip
// in place without evicting; inserting beyond capacity first evicts the
// least-recently-used entry and releases its resource.
func (c *Cache) Set(key string, clip *audio.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		if entry.clip != clip && c.release != nil {
			c.release(key, entry.clip)
		}
		entry.clip = clip
		c.order.MoveToFront(elem)
		return
	}

	for len(c.items) >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&cacheEntry{key: key, clip: clip})
	c.items[key] = elem
}

// Delete removes a single entry and releases its resource.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return
	}
	c.removeElement(elem)
}

// Clear removes every entry, releasing each resource.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.order.Len() > 0 {
		c.removeElement(c.order.Back())
	}
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evictOldest must be called with c.mu held.
func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeElement(oldest)
}

// removeElement must be called with c.mu held.
func (c *Cache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.order.Remove(elem)
	if c.release != nil {
		c.release(entry.key, entry.clip)
	}
}
