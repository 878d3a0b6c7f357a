package composer

import (
	"sync"

	"github.com/defstack/defstack/defs"
)

// Cache remembers what each build unit produced, keyed by unit directory
// and guarded by the unit's file fingerprint. It is safe for concurrent
// use; a long-lived process shares one Cache across Build calls.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	fingerprint string
	units       []defs.Unit
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// lookup returns the cached contribution for dir when the stored
// fingerprint still matches.
func (c *Cache) lookup(dir, fingerprint string) ([]defs.Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[dir]
	if !ok || e.fingerprint != fingerprint {
		return nil, false
	}
	return e.units, true
}

// commit stores every freshly built unit result. Called once per successful
// build; failed builds never reach it.
func (c *Cache) commit(results []*unitResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, res := range results {
		if res == nil || res.fromCache {
			continue
		}
		c.entries[res.dir] = cacheEntry{fingerprint: res.fingerprint, units: res.units}
	}
}

// Invalidate drops the entry for one unit directory, forcing the next build
// to rebuild it. Long-lived processes call this from file watchers.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, dir)
}

// Len returns the number of cached units.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
