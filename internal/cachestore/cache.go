// Package cachestore is a path-keyed content cache: lookup-or-load
// with negative caching, plus a wholesale-replace operation the
// indexer uses on every directory-mtime change.
package cachestore

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Blob is one cached file: its bytes and mtime, or — if Data is nil —
// a negative cache entry recording that the path doesn't exist. A
// negative Blob owns no bytes, so there is nothing to free beyond the
// map entry.
type Blob struct {
	Data  []byte
	Mtime time.Time
}

// Missing reports whether b is a negative cache entry.
func (b *Blob) Missing() bool { return b == nil || b.Data == nil }

// Cache maps absolute filesystem paths to Blobs. Lookups and the
// indexer's wholesale swap are guarded by one RWMutex, since multiple
// reactor workers read and populate the cache concurrently.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Blob

	group singleflight.Group // coalesces concurrent misses on the same path
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*Blob)}
}

// Get returns the cached Blob for key without attempting a load. The
// second return is false when key has no entry: it was never looked up
// or Put, or a Replace has since discarded it.
func (c *Cache) Get(key string) (*Blob, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

// Put inserts or overwrites a Blob. Used by the indexer to pre-warm
// generated pages (blog HTML, the index page) without going through
// LookupOrLoad's file-read path.
func (c *Cache) Put(key string, b *Blob) {
	c.mu.Lock()
	c.entries[key] = b
	c.mu.Unlock()
}

// LookupOrLoad implements the cache's read-through contract:
//  1. present -> return it, whether or not it's a negative entry.
//  2. otherwise stat + slurp the file whole.
//  3. on read failure, insert and return a negative entry.
//  4. on success, insert and return the populated entry.
//
// Concurrent misses on the same key are coalesced with singleflight so
// only one goroutine ever stats/reads a given path at a time.
func (c *Cache) LookupOrLoad(path string) (*Blob, bool) {
	if b, ok := c.Get(path); ok {
		return b, !b.Missing()
	}

	v, _, _ := c.group.Do(path, func() (any, error) {
		if b, ok := c.Get(path); ok {
			return b, nil
		}

		info, err := os.Stat(path)
		if err != nil {
			neg := &Blob{}
			c.Put(path, neg)
			return neg, nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			neg := &Blob{}
			c.Put(path, neg)
			return neg, nil
		}

		b := &Blob{Data: data, Mtime: info.ModTime()}
		c.Put(path, b)
		return b, nil
	})

	b := v.(*Blob)
	return b, !b.Missing()
}

// Replace atomically swaps the entire backing map, discarding every
// previously cached blob. The indexer uses this wholesale replacement
// instead of per-entry eviction after every directory rescan.
func (c *Cache) Replace(fresh map[string]*Blob) {
	c.mu.Lock()
	c.entries = fresh
	c.mu.Unlock()
}
