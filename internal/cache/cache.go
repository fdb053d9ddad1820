// Package cache provides the read cache shared by the aggregators. It is an
// explicit collaborator passed in by reference, keyed by query identity
// (e.g. "posts:0:5:viewer-3", "stories:active"), with coarse prefix
// invalidation: mutations drop every key under a prefix and the next read
// recomputes. Over-invalidating is fine, under-invalidating is not.
package cache

import (
	"strings"
	"sync"
)

// QueryCache is a string-keyed cache safe for concurrent use.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

// New creates an empty QueryCache.
func New() *QueryCache {
	return &QueryCache{entries: make(map[string]interface{})}
}

// Get returns the cached value for key, if any.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores a value under key, replacing any previous entry.
func (c *QueryCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate drops every entry whose key starts with prefix.
func (c *QueryCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
