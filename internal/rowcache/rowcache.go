// Package rowcache remembers materialized rows by record id.
package rowcache

import "github.com/kobzarvs/qstock/internal/fingerprint"

// Entry is the render state of one record.
type Entry[H comparable] struct {
	Handle H
	Hash   fingerprint.Sum
	Band   int
}

// Cache maps record ids to their materialized rows. Every handle that
// leaves the cache goes through the dispose callback exactly once.
type Cache[H comparable] struct {
	entries map[string]Entry[H]
	dispose func(H)
}

func New[H comparable](dispose func(H)) *Cache[H] {
	if dispose == nil {
		dispose = func(H) {}
	}
	return &Cache[H]{
		entries: make(map[string]Entry[H]),
		dispose: dispose,
	}
}

func (c *Cache[H]) Get(id string) (Entry[H], bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Put stores a row for id. Storing the same handle again only updates
// hash and band; a different handle disposes the one it replaces.
func (c *Cache[H]) Put(id string, h H, hash fingerprint.Sum, band int) {
	if old, ok := c.entries[id]; ok && old.Handle != h {
		c.dispose(old.Handle)
	}
	c.entries[id] = Entry[H]{Handle: h, Hash: hash, Band: band}
}

// Remove drops one id, disposing its handle. It reports whether the id
// was cached.
func (c *Cache[H]) Remove(id string) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	delete(c.entries, id)
	c.dispose(e.Handle)
	return true
}

// Reconcile evicts every id missing from next and returns the cached
// handles of next, in next's order.
func (c *Cache[H]) Reconcile(next []string) []H {
	keep := make(map[string]struct{}, len(next))
	for _, id := range next {
		keep[id] = struct{}{}
	}
	for id, e := range c.entries {
		if _, ok := keep[id]; ok {
			continue
		}
		delete(c.entries, id)
		c.dispose(e.Handle)
	}
	handles := make([]H, 0, len(next))
	for _, id := range next {
		if e, ok := c.entries[id]; ok {
			handles = append(handles, e.Handle)
		}
	}
	return handles
}

func (c *Cache[H]) Len() int {
	return len(c.entries)
}

// Clear disposes everything.
func (c *Cache[H]) Clear() {
	for id, e := range c.entries {
		delete(c.entries, id)
		c.dispose(e.Handle)
	}
}
