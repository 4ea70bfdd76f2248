package persist

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mankinskin/hypergraph/internal/vertex"
)

// DefaultAtomCacheSize is the capacity NewAtomCache uses when it is
// given a size <= 0.
const DefaultAtomCacheSize = 4096

// AtomCache front-ends an atom table's value->token resolution with an
// LRU, so a hot insert loop resolving the same recurring atoms avoids
// the table's mutex and map lookup on every repeat.
type AtomCache[V comparable] struct {
	cache *lru.Cache[V, vertex.Token]
}

// NewAtomCache creates a cache holding up to size recently resolved
// values. size <= 0 falls back to DefaultAtomCacheSize.
func NewAtomCache[V comparable](size int) *AtomCache[V] {
	if size <= 0 {
		size = DefaultAtomCacheSize
	}
	cache, _ := lru.New[V, vertex.Token](size)
	return &AtomCache[V]{cache: cache}
}

// Get returns the cached token for value, if present.
func (c *AtomCache[V]) Get(value V) (vertex.Token, bool) {
	return c.cache.Get(value)
}

// Add records value's resolved token, evicting the least recently
// used entry once the cache is full.
func (c *AtomCache[V]) Add(value V, tok vertex.Token) {
	c.cache.Add(value, tok)
}

// Len returns the number of entries currently cached.
func (c *AtomCache[V]) Len() int { return c.cache.Len() }
