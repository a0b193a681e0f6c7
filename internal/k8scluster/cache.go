package k8scluster

import (
	"strings"
	"sync"
	"time"
)

const discoveryCacheTTL = 60 * time.Second

// cacheKey identifies one resolved ApiResource: the cluster's host, the
// configured namespace (or "default"), and the trimmed lowercase resource
// name the caller asked for.
type cacheKey struct {
	clusterURL string
	namespace  string
	resource   string
}

func newCacheKey(clusterURL, namespace, resource string) cacheKey {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = "default"
	}
	return cacheKey{
		clusterURL: clusterURL,
		namespace:  ns,
		resource:   strings.ToLower(strings.TrimSpace(resource)),
	}
}

type cacheEntry struct {
	resource  resolvedResource
	expiresAt time.Time
}

// discoveryCache is the process-wide, TTL'd resolution cache of spec
// §4.4.1. Lookup holds the shared (read) lock; insertion, expiry-cleanup,
// and invalidation hold the exclusive (write) lock. Never call into the
// network while holding either lock.
type discoveryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

func newDiscoveryCache() *discoveryCache {
	return &discoveryCache{entries: make(map[cacheKey]cacheEntry)}
}

func (c *discoveryCache) lookup(key cacheKey) (resolvedResource, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return resolvedResource{}, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if current, stillPresent := c.entries[key]; stillPresent && !current.expiresAt.After(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return resolvedResource{}, false
	}

	return entry.resource, true
}

func (c *discoveryCache) insert(key cacheKey, resource resolvedResource) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{resource: resource, expiresAt: time.Now().Add(discoveryCacheTTL)}
	c.mu.Unlock()
}

func (c *discoveryCache) invalidate(key cacheKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
