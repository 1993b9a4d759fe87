package watcher

import "sync"

// SkipCache remembers containers whose network mode rules out attachments, so
// the warning for each is logged once instead of on every sweep. Entries are
// keyed by container ID, never by name: names can be reused after removal,
// IDs cannot.
type SkipCache struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewSkipCache() *SkipCache {
	return &SkipCache{ids: make(map[string]struct{})}
}

// Add records the ID and reports whether it was newly added.
func (c *SkipCache) Add(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

// Remove forgets the ID. Removing an absent ID is a no-op.
func (c *SkipCache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
}

// Contains reports whether the ID is cached.
func (c *SkipCache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}
