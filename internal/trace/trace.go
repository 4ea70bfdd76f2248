// Package trace implements the bidirectional trace cache (spec §3
// "TraceCache", §4.3, C4): the bottom-up/top-down position→edge map
// populated while the search engine walks the graph, and handed off
// to the split planner and join builder as an InitInterval.
package trace

import (
	"strconv"
	"sync"

	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/path"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

// Direction distinguishes a bottom-up edge (child -> parent, keyed at
// the parent's entry position) from a top-down edge (parent -> child,
// keyed the same way but read in the opposite sense).
type Direction int

const (
	BottomUp Direction = iota
	TopDown
)

// Edge records a parent/child relationship discovered during search:
// "at this position in this token, the child at Child came from
// pattern Child.Pattern, entry Child.Entry, and spans into Target".
type Edge struct {
	Target vertex.ID
	Child  vertex.Location
}

// VertexCache holds the bottom-up and top-down edge maps for a single
// vertex, keyed by a vertex-local AtomPosition: the atom offset, within
// that vertex, of the pattern entry the edge passes through (§4.3's
// "root position" discipline).
type VertexCache struct {
	BU map[path.AtomPosition]Edge
	TD map[path.AtomPosition]Edge
}

func newVertexCache() *VertexCache {
	return &VertexCache{
		BU: make(map[path.AtomPosition]Edge),
		TD: make(map[path.AtomPosition]Edge),
	}
}

// Cache is the trace cache built during one search and handed off to
// insert as part of an InitInterval.
type Cache struct {
	mu       sync.RWMutex
	byVertex map[vertex.ID]*VertexCache
}

// New returns an empty trace cache.
func New() *Cache {
	return &Cache{byVertex: make(map[vertex.ID]*VertexCache)}
}

func (c *Cache) entryFor(id vertex.ID) *VertexCache {
	vc, ok := c.byVertex[id]
	if !ok {
		vc = newVertexCache()
		c.byVertex[id] = vc
	}
	return vc
}

// RecordBottomUp records that, at pos within vertex v, the search
// descended through edge e. The root position is always the entry
// position where matching entered the pattern, never an advanced or
// candidate position (spec §4.3). Duplicate writes at the same key
// must be idempotent; a write that disagrees with an existing entry
// is a cache inconsistency.
func (c *Cache) RecordBottomUp(v vertex.ID, pos path.AtomPosition, e Edge) error {
	return c.record(v, pos, e, BottomUp)
}

// RecordTopDown is the dual of RecordBottomUp, also keyed at the root
// position (never end_pos), per §4.3's Prefix/Range emission rule.
func (c *Cache) RecordTopDown(v vertex.ID, pos path.AtomPosition, e Edge) error {
	return c.record(v, pos, e, TopDown)
}

func (c *Cache) record(v vertex.ID, pos path.AtomPosition, e Edge, dir Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vc := c.entryFor(v)
	m := vc.BU
	if dir == TopDown {
		m = vc.TD
	}
	if existing, ok := m[pos]; ok {
		if existing != e {
			return hgerrors.ErrCacheInconsistency.
				WithDetail("vertex", strconv.FormatUint(uint64(v), 10)).
				WithDetail("position", strconv.FormatUint(uint64(pos), 10))
		}
		return nil
	}
	m[pos] = e
	return nil
}

// Get returns a read-only snapshot of the VertexCache for v, or false
// if nothing was recorded for it.
func (c *Cache) Get(v vertex.ID) (VertexCache, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vc, ok := c.byVertex[v]
	if !ok {
		return VertexCache{}, false
	}
	return VertexCache{BU: cloneEdges(vc.BU), TD: cloneEdges(vc.TD)}, true
}

// BottomUp looks up the bottom-up edge recorded at (v, pos).
func (c *Cache) BottomUp(v vertex.ID, pos path.AtomPosition) (Edge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vc, ok := c.byVertex[v]
	if !ok {
		return Edge{}, false
	}
	e, ok := vc.BU[pos]
	return e, ok
}

// TopDown looks up the top-down edge recorded at (v, pos).
func (c *Cache) TopDown(v vertex.ID, pos path.AtomPosition) (Edge, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vc, ok := c.byVertex[v]
	if !ok {
		return Edge{}, false
	}
	e, ok := vc.TD[pos]
	return e, ok
}

func cloneEdges(m map[path.AtomPosition]Edge) map[path.AtomPosition]Edge {
	out := make(map[path.AtomPosition]Edge, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
