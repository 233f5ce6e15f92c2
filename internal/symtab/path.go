package symtab

import "sync"

// PathRef is a shared, immutable reference to a filesystem path. Identical
// paths (by string value) always yield the same *PathRef, so adjacency
// structures keyed by path can compare PathRef by pointer identity instead
// of doing a string comparison on every lookup.
type PathRef struct {
	path string
}

// String returns the underlying path string.
func (r *PathRef) String() string {
	if r == nil {
		return ""
	}
	return r.path
}

// PathCache deduplicates PathRef values. Zero value is not usable; use
// NewPathCache.
type PathCache struct {
	mu    sync.RWMutex
	cache map[string]*PathRef
}

// NewPathCache creates an empty path cache.
func NewPathCache() *PathCache {
	return &PathCache{cache: make(map[string]*PathRef, 64)}
}

// Get returns the shared PathRef for path, creating one if this is the
// first time path has been seen.
func (c *PathCache) Get(path string) *PathRef {
	c.mu.RLock()
	if ref, ok := c.cache[path]; ok {
		c.mu.RUnlock()
		return ref
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if ref, ok := c.cache[path]; ok {
		return ref
	}
	ref := &PathRef{path: path}
	c.cache[path] = ref
	return ref
}

// Peek returns the shared PathRef for path without creating one.
func (c *PathCache) Peek(path string) (*PathRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.cache[path]
	return ref, ok
}

// Drop removes path's cache entry. Existing PathRef values already handed
// out remain valid (they are simply no longer reachable via Get); this
// matches the call graph's remove_file contract, which drops the cache
// entry only after every reference to it has already been excised from the
// graph's own structures.
func (c *PathCache) Drop(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, path)
}

// Len returns the number of distinct cached paths.
func (c *PathCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
