// Package cache holds the meaning cache shared by the free translation
// path and the AI vocabulary results.
//
// A MeaningCache is constructed by the caller and passed to whatever needs
// it; there is no package-level instance. Keys are normalized with
// segment.NormalizeKey, so "English", "english." and " ENGLISH " share one
// entry.
package cache

import (
	"sync"

	"github.com/sahaj-english/sahaj/segment"
)

// MeaningCache maps normalized words to a target-language meaning.
// It is safe for concurrent use.
type MeaningCache struct {
	mu      sync.RWMutex
	entries map[string]string
	// order records insertion order for eviction; only kept when bounded.
	order []string
	max   int
}

// Option configures a MeaningCache.
type Option func(*options)

type options struct {
	maxEntries int
	seed       map[string]string
}

// WithMaxEntries bounds the cache. When full, the oldest inserted entry is
// evicted. Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithSeed preloads entries, e.g. CommonVocabulary().
func WithSeed(seed map[string]string) Option {
	return func(o *options) { o.seed = seed }
}

// New returns a cache configured by opts.
func New(opts ...Option) *MeaningCache {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &MeaningCache{entries: make(map[string]string)}
	if o.maxEntries > 0 {
		c.max = o.maxEntries
	}
	for k, v := range o.seed {
		c.setLocked(k, v)
	}
	return c
}

// Get returns the meaning stored for word.
func (c *MeaningCache) Get(word string) (string, bool) {
	key := segment.NormalizeKey(word)
	if key == "" {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[key]
	return m, ok
}

// Set stores meaning for word, overwriting any previous value. Empty words
// or meanings are ignored.
func (c *MeaningCache) Set(word, meaning string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(word, meaning)
}

// BulkPopulate stores every entry of m. For keys that normalize to the
// same entry, the last one applied wins.
func (c *MeaningCache) BulkPopulate(m map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range m {
		c.setLocked(k, v)
	}
}

// Clear drops every entry.
func (c *MeaningCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	c.order = nil
}

// Len returns the number of entries.
func (c *MeaningCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of all entries.
func (c *MeaningCache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

func (c *MeaningCache) setLocked(word, meaning string) {
	key := segment.NormalizeKey(word)
	if key == "" || meaning == "" {
		return
	}
	if _, exists := c.entries[key]; !exists && c.max > 0 {
		for len(c.entries) >= c.max && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = meaning
}
