package sanction

import (
	"fraudwatch/pkg/domain"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is the set of authors currently in cooldown. Every operation holds the
// cache lock for its whole duration; compound check-then-act sequences are
// made atomic by the caller (the pipeline's officer lock), not by the cache.
//
// Entries are normally removed by a Releaser. maxAge is a safety bound that
// expires entries whose release never ran; it should exceed the cooldown.
type Cache struct {
	mu      sync.Mutex
	entries *expirable.LRU[domain.UserID, struct{}]
}

// NewCache constructs a Cache holding at most maxEntries authors (0 means
// unbounded) for at most maxAge (0 means no expiry).
func NewCache(maxEntries int, maxAge time.Duration) *Cache {
	return &Cache{
		entries: expirable.NewLRU[domain.UserID, struct{}](maxEntries, nil, maxAge),
	}
}

// Contains reports whether id is in cooldown.
func (c *Cache) Contains(id domain.UserID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Contains(id)
}

// Add puts id in cooldown. Adding a present id is a no-op.
func (c *Cache) Add(id domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries.Contains(id) {
		return
	}
	c.entries.Add(id, struct{}{})
}

// Remove releases id. Removing an absent id is a no-op.
func (c *Cache) Remove(id domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Remove(id)
}

// Len returns the number of authors in cooldown.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Len()
}
