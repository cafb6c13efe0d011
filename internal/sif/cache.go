package sif

import "sync"

type rasterKey struct {
	year int
	doy  int
}

type cacheEntry struct {
	grid  *Grid
	found bool
}

// CachingLoader is a read-through memoization layer over a GridLoader.
// Load is a pure function of its key and the on-disk content, so both
// present and absent results are cached; hard failures are not.
//
// Safe for concurrent use. Racing misses for the same key may each read the
// file and the last writer wins; since the read is side-effect free, the
// duplicate work is harmless and no single-flight coordination is done.
type CachingLoader struct {
	loader GridLoader

	// OnLookup, when set before the cache is first used, observes every
	// lookup (true for a hit). Used to feed instrumentation without the
	// pipeline depending on a metrics library.
	OnLookup func(hit bool)

	mu      sync.RWMutex
	entries map[rasterKey]cacheEntry
}

// NewCachingLoader wraps a loader with an in-memory result cache.
func NewCachingLoader(loader GridLoader) *CachingLoader {
	return &CachingLoader{
		loader:  loader,
		entries: make(map[rasterKey]cacheEntry),
	}
}

// Load returns the cached result for the key, reading through to the
// underlying loader on a miss.
func (c *CachingLoader) Load(year, doy int) (*Grid, bool, error) {
	key := rasterKey{year: year, doy: doy}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if c.OnLookup != nil {
		c.OnLookup(ok)
	}
	if ok {
		return entry.grid, entry.found, nil
	}

	grid, found, err := c.loader.Load(year, doy)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{grid: grid, found: found}
	c.mu.Unlock()

	return grid, found, nil
}

// Len returns the number of cached keys.
func (c *CachingLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
