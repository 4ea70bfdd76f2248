// Package join implements the wrapper builder (spec §4.6, C7): given
// an InitInterval and a split Plan, it creates the minimal overlap
// wrapper vertex and rewrites the single enclosing parent pattern. It
// also provides Compose, the general token-sequence builder used both
// here (for complements and the inserted token) and by the public
// insert operation when no ancestor overlap exists at all.
package join

import (
	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/search"
	"github.com/mankinskin/hypergraph/internal/split"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

// Compose builds (or reuses) a single token denoting the concatenation
// of tokens. A single token is returned unchanged. Two tokens become
// one pattern. Three or more recursively build both edge
// decompositions — [first, rest] and [init, last] — as two separate
// patterns of the same new vertex, which is what gives every
// contiguous substring of the result a reachable descent (spec's
// invariant 7, and §8 scenario 3's "both [a,aa] and [aa,a] must
// appear"). Before creating anything, it checks whether a vertex for
// this exact sequence already exists and reuses it (invariant 5).
func Compose(store *vertex.Store, tokens []vertex.Token) (vertex.Token, error) {
	if len(tokens) == 0 {
		return vertex.Token{}, hgerrors.ErrEmptyPattern
	}
	if len(tokens) == 1 {
		return tokens[0], nil
	}
	if existing, ok := tryFind(store, tokens); ok {
		return existing, nil
	}
	if len(tokens) == 2 {
		return create(store, tokens)
	}

	left, err := Compose(store, tokens[:len(tokens)-1])
	if err != nil {
		return vertex.Token{}, err
	}
	right, err := Compose(store, tokens[1:])
	if err != nil {
		return vertex.Token{}, err
	}

	var width uint32
	for _, t := range tokens {
		width += t.Width
	}
	v, err := store.CreateVertex(width)
	if err != nil {
		return vertex.Token{}, err
	}
	if _, err := store.AddPattern(v, []vertex.Token{tokens[0], right}); err != nil {
		return vertex.Token{}, err
	}
	if _, err := store.AddPattern(v, []vertex.Token{left, tokens[len(tokens)-1]}); err != nil {
		return vertex.Token{}, err
	}
	return v, nil
}

func create(store *vertex.Store, tokens []vertex.Token) (vertex.Token, error) {
	var width uint32
	for _, t := range tokens {
		width += t.Width
	}
	v, err := store.CreateVertex(width)
	if err != nil {
		return vertex.Token{}, err
	}
	if _, err := store.AddPattern(v, tokens); err != nil {
		return vertex.Token{}, err
	}
	return v, nil
}

func tryFind(store *vertex.Store, tokens []vertex.Token) (vertex.Token, bool) {
	resp, err := search.FindAncestor(store, tokens)
	if err != nil {
		return vertex.Token{}, false
	}
	if resp.IsComplete() && resp.QueryExhausted() && resp.StartOffset() == 0 {
		return resp.RootToken(), true
	}
	return vertex.Token{}, false
}

// splitChildAt decomposes tok into the sub-tokens spanning
// [0, atOffset) and [atOffset, width(tok)), reusing Compose so the
// pieces are themselves reachable substrings (invariant 7) and
// deduplicated against any vertex that already denotes them
// (invariant 5).
func splitChildAt(store *vertex.Store, tok vertex.Token, atOffset uint32) (vertex.Token, vertex.Token, error) {
	if atOffset == 0 {
		return vertex.Token{}, tok, nil
	}
	if atOffset == tok.Width {
		return tok, vertex.Token{}, nil
	}
	atoms := flattenAtoms(store, tok)
	left, err := Compose(store, atoms[:atOffset])
	if err != nil {
		return vertex.Token{}, vertex.Token{}, err
	}
	right, err := Compose(store, atoms[atOffset:])
	if err != nil {
		return vertex.Token{}, vertex.Token{}, err
	}
	return left, right, nil
}

// threeWaySplit decomposes tok into [0,at1), [at1,at2), [at2,width)
// when a single entry's overlap is strictly interior on both sides
// (plan.IStart == plan.IEnd with a partial overlap).
func threeWaySplit(store *vertex.Store, tok vertex.Token, at1, at2 uint32) (vertex.Token, vertex.Token, vertex.Token, error) {
	left, rest, err := splitChildAt(store, tok, at1)
	if err != nil {
		return vertex.Token{}, vertex.Token{}, vertex.Token{}, err
	}
	mid, right, err := splitChildAt(store, rest, at2-at1)
	if err != nil {
		return vertex.Token{}, vertex.Token{}, vertex.Token{}, err
	}
	return left, mid, right, nil
}

func flattenAtoms(store *vertex.Store, tok vertex.Token) []vertex.Token {
	if store.IsAtom(tok.ID) {
		return []vertex.Token{tok}
	}
	_, pattern, ok := store.LowestPattern(tok.ID)
	if !ok {
		return []vertex.Token{tok}
	}
	out := make([]vertex.Token, 0, tok.Width)
	for _, c := range pattern {
		out = append(out, flattenAtoms(store, c)...)
	}
	return out
}

// BuildWrapper implements spec §4.6: it wraps the full span of parent
// entries named by plan.IStart..plan.IEnd so that both the original
// decomposition and the new insertion remain reachable at that
// location, rewrites the enclosing parent pattern to replace that
// span, and returns the token for insertedPattern itself (not the
// wrapper — callers identify insertions by their own query, spec
// §4.6 "Result").
//
// The wrapped span (the full entries plan names) is generally wider
// than the query's matched overlap: when the overlap's edges fall
// strictly inside the first or last entry, the leftover slivers
// outside the overlap but inside the entry ("complements") ride along
// in the insertion view so it still spans the entry's full width.
// When IStart == IEnd a single existing entry already denotes the
// whole wrapped span, so it is given the new pattern directly instead
// of allocating a redundant wrapper vertex around it.
func BuildWrapper(store *vertex.Store, interval split.InitInterval, plan *split.Plan, insertedPattern []vertex.Token) (vertex.Token, error) {
	parentPattern, ok := store.Pattern(plan.Parent, plan.Pattern)
	if !ok {
		return vertex.Token{}, hgerrors.ErrCacheInconsistency
	}

	offsets := make([]uint32, len(parentPattern)+1)
	for i, e := range parentPattern {
		offsets[i+1] = offsets[i] + e.Width
	}

	startOff := uint32(interval.StartBound)
	endOff := uint32(interval.EndBound)

	insertedToken, err := Compose(store, insertedPattern)
	if err != nil {
		return vertex.Token{}, err
	}
	if insertedToken.Width != endOff-startOff {
		return vertex.Token{}, hgerrors.ErrWidthMismatch.
			WithDetail("overlap_width", itoa(endOff-startOff)).
			WithDetail("inserted_width", itoa(insertedToken.Width))
	}

	if plan.IStart == plan.IEnd {
		target := parentPattern[plan.IStart]
		base := offsets[plan.IStart]
		lc, _, rc, err := threeWaySplit(store, target, startOff-base, endOff-base)
		if err != nil {
			return vertex.Token{}, err
		}
		insertionView := insertionViewOf(lc, insertedToken, rc)
		if len(insertionView) < 2 {
			// The whole entry was replaced outright; no second pattern
			// is needed, the parent simply points at the new token.
			return insertedToken, spliceParent(store, plan.Parent, plan.Pattern, parentPattern, plan.IStart, plan.IEnd, insertedToken)
		}
		if _, err := store.AddPattern(target, insertionView); err != nil {
			return vertex.Token{}, err
		}
		return insertedToken, nil
	}

	originalView := append([]vertex.Token{}, parentPattern[plan.IStart:plan.IEnd+1]...)

	leftEntry := parentPattern[plan.IStart]
	lc, _, err := splitChildAt(store, leftEntry, startOff-offsets[plan.IStart])
	if err != nil {
		return vertex.Token{}, err
	}

	rightEntry := parentPattern[plan.IEnd]
	_, rc, err := splitChildAt(store, rightEntry, endOff-offsets[plan.IEnd])
	if err != nil {
		return vertex.Token{}, err
	}

	insertionView := insertionViewOf(lc, insertedToken, rc)
	if len(insertionView) < 2 {
		return insertedToken, spliceParent(store, plan.Parent, plan.Pattern, parentPattern, plan.IStart, plan.IEnd, insertedToken)
	}

	wrapper, ok := tryFind(store, originalView)
	if !ok {
		wrapWidth := offsets[plan.IEnd+1] - offsets[plan.IStart]
		wrapper, err = store.CreateVertex(wrapWidth)
		if err != nil {
			return vertex.Token{}, err
		}
		if _, err := store.AddPattern(wrapper, originalView); err != nil {
			return vertex.Token{}, err
		}
	}
	if _, err := store.AddPattern(wrapper, insertionView); err != nil {
		return vertex.Token{}, err
	}

	if err := spliceParent(store, plan.Parent, plan.Pattern, parentPattern, plan.IStart, plan.IEnd, wrapper); err != nil {
		return vertex.Token{}, err
	}
	return insertedToken, nil
}

// insertionViewOf assembles the insertion-side pattern, omitting any
// complement that turned out to be the zero token (an exact-boundary
// split has no leftover on that side).
func insertionViewOf(left, middle, right vertex.Token) []vertex.Token {
	var view []vertex.Token
	if left != (vertex.Token{}) {
		view = append(view, left)
	}
	view = append(view, middle)
	if right != (vertex.Token{}) {
		view = append(view, right)
	}
	return view
}

// spliceParent rewrites parent's pattern, replacing the entry range
// [iStart, iEnd] with replacement. Per the store's coexisting-pattern
// model this is realized as a new AddPattern call; the old pattern is
// left in place and still resolvable.
func spliceParent(store *vertex.Store, parent vertex.ID, _ vertex.PatternID, parentPattern vertex.Pattern, iStart, iEnd int, replacement vertex.Token) error {
	newPattern := make([]vertex.Token, 0, len(parentPattern)-(iEnd-iStart))
	newPattern = append(newPattern, parentPattern[:iStart]...)
	newPattern = append(newPattern, replacement)
	newPattern = append(newPattern, parentPattern[iEnd+1:]...)

	parentTok, ok := store.Token(parent)
	if !ok {
		return hgerrors.ErrCacheInconsistency
	}
	_, err := store.AddPattern(parentTok, newPattern)
	return err
}

func itoa(v uint32) string {
	return vertex.Token{Width: v}.String()
}
