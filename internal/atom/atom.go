// Package atom canonicalizes atom values into vertex Tokens (spec
// §4.1 get_or_create_atom, invariant 4 "Atom uniqueness"). It is
// generic over the atom value type so the same engine serves
// character streams, byte streams, or any other comparable unit.
package atom

import (
	"sync"

	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

// Token re-exports vertex.Token so callers of this package don't need
// to import internal/vertex just to spell the handle type.
type Token = vertex.Token

// Table canonicalizes values of type V into atom tokens, backed by a
// shared vertex.Store. Every atom is a width-1 vertex with no
// patterns (vertex.Token.IsAtom).
type Table[V comparable] struct {
	store *vertex.Store

	mu      sync.RWMutex
	byValue map[V]Token
	byID    map[vertex.ID]V
}

// NewTable creates an atom table backed by store. Multiple tables may
// share one store only if their value domains never collide in ID
// space, which holds because each table allocates its own vertices;
// in practice a Graph owns exactly one atom table per store.
func NewTable[V comparable](store *vertex.Store) *Table[V] {
	return &Table[V]{
		store:   store,
		byValue: make(map[V]Token),
		byID:    make(map[vertex.ID]V),
	}
}

// GetOrCreate returns the canonical token for value, creating a new
// width-1 vertex on first use. Idempotent.
func (t *Table[V]) GetOrCreate(value V) (Token, error) {
	t.mu.RLock()
	if tok, ok := t.byValue[value]; ok {
		t.mu.RUnlock()
		return tok, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check under the write lock: another writer may have raced us.
	if tok, ok := t.byValue[value]; ok {
		return tok, nil
	}
	tok, err := t.store.CreateVertex(1)
	if err != nil {
		return Token{}, err
	}
	t.byValue[value] = tok
	t.byID[tok.ID] = value
	return tok, nil
}

// Lookup returns the existing token for value without creating one.
func (t *Table[V]) Lookup(value V) (Token, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tok, ok := t.byValue[value]
	return tok, ok
}

// Value returns the atom value backing token id, if id is an atom
// known to this table.
func (t *Table[V]) Value(id vertex.ID) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.byID[id]
	return v, ok
}

// Len returns the number of distinct atom values canonicalized so
// far.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byValue)
}

// Values returns a snapshot of the id->value side index, used by
// internal/persist to serialize atom values alongside the vertex
// arena they're anchored to.
func (t *Table[V]) Values() map[vertex.ID]V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[vertex.ID]V, len(t.byID))
	for id, v := range t.byID {
		out[id] = v
	}
	return out
}

// Restore rebuilds a Table's value index from a previously exported
// id->value map. store must already contain a vertex for every id, as
// produced by vertex.Import.
func Restore[V comparable](store *vertex.Store, values map[vertex.ID]V) (*Table[V], error) {
	t := NewTable[V](store)
	for id, v := range values {
		tok, ok := store.Token(id)
		if !ok {
			return nil, hgerrors.ErrCacheInconsistency.WithDetail("atom_vertex", tok.String())
		}
		t.byValue[v] = tok
		t.byID[id] = v
	}
	return t, nil
}
