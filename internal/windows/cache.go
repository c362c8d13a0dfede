package windows

import (
	"image"
	"sync"
)

type cacheKey struct {
	pid   int
	title string
}

// ImageCache keeps the last good thumbnail per (pid, title) so a window
// whose live capture fails still shows its previous picture. Capacity is
// bounded: an insert that pushes the count past capacity drops the
// oldest-inserted half in one pass.
type ImageCache struct {
	capacity int

	mu      sync.Mutex
	entries map[cacheKey]*image.RGBA
	order   []cacheKey // insertion order, oldest first
}

// NewImageCache creates a cache that evicts once it grows past capacity.
func NewImageCache(capacity int) *ImageCache {
	if capacity < 2 {
		capacity = 2
	}
	return &ImageCache{
		capacity: capacity,
		entries:  make(map[cacheKey]*image.RGBA),
	}
}

// Put stores a fresh capture, overwriting any previous entry for the key.
// Overwrites keep the key's original insertion age.
func (c *ImageCache) Put(pid int, title string, img *image.RGBA) {
	if img == nil {
		return
	}
	key := cacheKey{pid: pid, title: title}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = img
	if len(c.entries) > c.capacity {
		drop := len(c.entries) / 2
		for _, old := range c.order[:drop] {
			delete(c.entries, old)
		}
		c.order = append(c.order[:0], c.order[drop:]...)
	}
}

// Get returns the cached thumbnail for a window.
func (c *ImageCache) Get(pid int, title string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[cacheKey{pid: pid, title: title}]
	return img, ok
}

// Purge forgets one window's thumbnail, used after its close affordance
// ran.
func (c *ImageCache) Purge(pid int, title string) {
	key := cacheKey{pid: pid, title: title}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.order = removeKeys(c.order, func(k cacheKey) bool { return k == key })
}

// PurgePID forgets every thumbnail owned by a process, used after the
// process is terminated.
func (c *ImageCache) PurgePID(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.pid == pid {
			delete(c.entries, key)
		}
	}
	c.order = removeKeys(c.order, func(k cacheKey) bool { return k.pid == pid })
}

// Len reports the current entry count.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func removeKeys(order []cacheKey, drop func(cacheKey) bool) []cacheKey {
	kept := order[:0]
	for _, k := range order {
		if !drop(k) {
			kept = append(kept, k)
		}
	}
	return kept
}
