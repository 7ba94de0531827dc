package google

import (
	"container/list"
	"sync"
	"time"
)

// tabCache remembers which spreadsheet tabs are known to exist, so a write
// for an already seen month skips the metadata fetch. Entries expire so a
// tab deleted by hand in the spreadsheet is re-checked eventually.
type tabCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
}

type tabEntry struct {
	title     string
	expiresAt time.Time
}

func newTabCache(maxSize int, ttl time.Duration) *tabCache {
	return &tabCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Known reports whether the tab was seen recently.
func (c *tabCache) Known(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[title]
	if !ok {
		return false
	}
	entry := elem.Value.(*tabEntry)
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, entry.title)
		c.order.Remove(elem)
		return false
	}
	c.order.MoveToFront(elem)
	return true
}

// Remember marks the tab as existing, evicting the least recently used
// entry when the cache is full.
func (c *tabCache) Remember(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[title]; ok {
		elem.Value.(*tabEntry).expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	c.entries[title] = c.order.PushFront(&tabEntry{title: title, expiresAt: time.Now().Add(c.ttl)})
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*tabEntry).title)
			c.order.Remove(oldest)
		}
	}
}
