// Package hypergraph is the public operations surface (spec §4.7,
// C8): create_graph, insert, find_ancestor, find_pattern. It wires
// together the graph kernel and the three insertion subsystems
// (search, split, join) behind a small API generic over the atom
// value type, so the same engine serves character streams, byte
// streams, or any other comparable unit (spec §1's "atom" glossary
// entry leaves the value domain unspecified).
package hypergraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mankinskin/hypergraph/internal/atom"
	"github.com/mankinskin/hypergraph/internal/hgconfig"
	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/join"
	"github.com/mankinskin/hypergraph/internal/persist"
	"github.com/mankinskin/hypergraph/internal/search"
	"github.com/mankinskin/hypergraph/internal/split"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

// Token is the opaque vertex handle returned by every operation.
type Token = vertex.Token

// Response is the full hand-off from a search (spec §6's "Response").
type Response = search.Response

// Graph owns one vertex store and the atom table that canonicalizes
// values of type V into its atoms. Per spec §5, a Graph is
// single-writer: callers must not run Insert concurrently with any
// other operation on the same Graph, though reads (FindAncestor,
// FindPattern, Unfold) may run concurrently with each other.
type Graph[V comparable] struct {
	store *vertex.Store
	atoms *atom.Table[V]
	cfg   hgconfig.EngineConfig
	cache *persist.AtomCache[V]
}

// CreateGraph returns an empty graph configured with hgconfig.Default()
// (spec §6 "create_graph() -> Graph").
func CreateGraph[V comparable]() *Graph[V] {
	return CreateGraphWithConfig[V](hgconfig.Default())
}

// CreateGraphWithConfig returns an empty graph tuned by cfg: an LRU
// fronting atom resolution when cfg.AtomCacheSize > 0 (spec §4.1's
// optional side index), and a snapshot path later usable with
// Snapshot()/LoadSnapshot().
func CreateGraphWithConfig[V comparable](cfg hgconfig.EngineConfig) *Graph[V] {
	store := vertex.NewStore()
	g := &Graph[V]{store: store, atoms: atom.NewTable[V](store), cfg: cfg}
	if cfg.AtomCacheSize > 0 {
		g.cache = persist.NewAtomCache[V](cfg.AtomCacheSize)
	}
	return g
}

// InsertAtom canonicalizes value into its atom token, creating one on
// first use (spec §4.1 get_or_create_atom, invariant 4).
func (g *Graph[V]) InsertAtom(value V) (Token, error) {
	if g.cache != nil {
		if tok, ok := g.cache.Get(value); ok {
			return tok, nil
		}
	}
	tok, err := g.atoms.GetOrCreate(value)
	if err != nil {
		return Token{}, err
	}
	if g.cache != nil {
		g.cache.Add(value, tok)
	}
	return tok, nil
}

func (g *Graph[V]) resolve(values []V) ([]Token, error) {
	if len(values) == 0 {
		return nil, hgerrors.ErrEmptyPattern
	}
	toks := make([]Token, len(values))
	for i, v := range values {
		t, err := g.InsertAtom(v)
		if err != nil {
			return nil, err
		}
		toks[i] = t
	}
	return toks, nil
}

// Insert implements spec §4.7's insert(pattern): resolve every value
// to an atom, search for the smallest containing ancestor, and return
// it unchanged if the query is already an EntireRoot match
// (idempotence — spec §8 "insert(p); insert(p) returns the same token
// both times, with no structural change"). Otherwise it plans and
// builds the overlap wrapper. A query whose first atom occurs in no
// pattern yet (NoMatch) falls back to composing a brand-new vertex,
// which is how scenario 1 ("abc", no ancestor exists yet) and
// scenario 3 ("aaa", repeated atom with no ancestor) are realized.
// A query that the search matches only in part (QueryExhausted false)
// is not inserted: its composed token is wider than the confirmed
// overlap, so BuildWrapper returns ErrWidthMismatch.
func (g *Graph[V]) Insert(values []V) (Token, error) {
	toks, err := g.resolve(values)
	if err != nil {
		return Token{}, err
	}

	resp, err := search.FindAncestor(g.store, toks)
	if err != nil {
		if errors.Is(err, hgerrors.ErrNoMatch) {
			return join.Compose(g.store, toks)
		}
		return Token{}, err
	}
	if resp.IsComplete() && resp.QueryExhausted() {
		return resp.RootToken(), nil
	}

	interval := split.InitInterval{
		Root:       resp.RootToken(),
		Cache:      resp.Cache,
		StartBound: resp.StartOffset(),
		EndBound:   resp.CheckpointPosition(),
		StartPath:  resp.StartPath(),
		EndPath:    resp.EndPath(),
	}
	plan, err := split.PlanSplit(g.store, interval)
	if err != nil {
		return Token{}, err
	}
	return join.BuildWrapper(g.store, interval, plan, toks)
}

// FindAncestor delegates to the search engine with the ancestor
// traversal policy (spec §4.7).
func (g *Graph[V]) FindAncestor(values []V) (*Response, error) {
	toks, err := g.resolve(values)
	if err != nil {
		return nil, err
	}
	return search.FindAncestor(g.store, toks)
}

// FindPattern is FindAncestor restricted to exact pattern endings
// (spec §4.7).
func (g *Graph[V]) FindPattern(values []V) (*Response, error) {
	toks, err := g.resolve(values)
	if err != nil {
		return nil, err
	}
	return search.FindPattern(g.store, toks)
}

// Unfold walks token's lowest-numbered pattern down to atoms and
// returns their values in order, used by tests to check that a token
// unfolds to the values it was inserted from, including after a
// snapshot reload.
func (g *Graph[V]) Unfold(token Token) ([]V, error) {
	if !g.store.Exists(token.ID) {
		return nil, hgerrors.ErrCacheInconsistency.WithDetail("vertex", token.String())
	}
	return g.unfold(token), nil
}

func (g *Graph[V]) unfold(token Token) []V {
	if g.store.IsAtom(token.ID) {
		if v, ok := g.atoms.Value(token.ID); ok {
			return []V{v}
		}
		return nil
	}
	_, pattern, ok := g.store.LowestPattern(token.ID)
	if !ok {
		return nil
	}
	var out []V
	for _, c := range pattern {
		out = append(out, g.unfold(c)...)
	}
	return out
}

// Stats exposes vertex/atom/pattern counts (grounded on the teacher's
// project-stats reporting), used by tests and scripts/bench.
func (g *Graph[V]) Stats() vertex.Stats {
	return g.store.Stats()
}

// Snapshot writes the full arena and atom side table to cfg.SnapshotPath,
// holding the cross-process store lock for up to cfg.LockTimeout while
// it does. It is an error to call Snapshot on a graph configured
// without a SnapshotPath.
func (g *Graph[V]) Snapshot() error {
	if g.cfg.SnapshotPath == "" {
		return fmt.Errorf("snapshot: no snapshot_path configured")
	}
	lock := persist.NewStoreLock(g.cfg.SnapshotPath)
	if err := lock.LockTimeout(g.cfg.LockTimeout); err != nil {
		return fmt.Errorf("acquire snapshot lock: %w", err)
	}
	defer lock.Unlock()

	store, err := persist.OpenSnapshotStore(g.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	values := g.atoms.Values()
	atomValues := make(map[vertex.ID]json.RawMessage, len(values))
	for id, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal atom value for vertex %d: %w", id, err)
		}
		atomValues[id] = raw
	}
	return store.Save(g.store.Export(), atomValues)
}

// LoadSnapshot replaces this graph's arena and atom table with the
// contents previously written by Snapshot to cfg.SnapshotPath.
func (g *Graph[V]) LoadSnapshot() error {
	if g.cfg.SnapshotPath == "" {
		return fmt.Errorf("snapshot: no snapshot_path configured")
	}
	lock := persist.NewStoreLock(g.cfg.SnapshotPath)
	if err := lock.LockTimeout(g.cfg.LockTimeout); err != nil {
		return fmt.Errorf("acquire snapshot lock: %w", err)
	}
	defer lock.Unlock()

	store, err := persist.OpenSnapshotStore(g.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer store.Close()

	vertices, atomValues, err := store.Load()
	if err != nil {
		return err
	}
	newStore, err := vertex.Import(vertices)
	if err != nil {
		return err
	}
	values := make(map[vertex.ID]V, len(atomValues))
	for id, raw := range atomValues {
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("unmarshal atom value for vertex %d: %w", id, err)
		}
		values[id] = v
	}
	newAtoms, err := atom.Restore[V](newStore, values)
	if err != nil {
		return err
	}

	g.store = newStore
	g.atoms = newAtoms
	if g.cfg.AtomCacheSize > 0 {
		g.cache = persist.NewAtomCache[V](g.cfg.AtomCacheSize)
	}
	return nil
}
