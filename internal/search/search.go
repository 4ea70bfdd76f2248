// Package search implements the ancestor search engine (spec §4.4,
// C5): given a query pattern, find the smallest root vertex that
// contains the longest contiguous match, populating a trace cache as
// it climbs from the query's first atom toward containing ancestors.
package search

import (
	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/hglog"
	"github.com/mankinskin/hypergraph/internal/path"
	"github.com/mankinskin/hypergraph/internal/trace"
	"github.com/mankinskin/hypergraph/internal/vertex"

	"github.com/emirpasic/gods/v2/trees/binaryheap"
)

// PathCoverage is the sealed result shape of a search (spec §3
// "PathCoverage"): EntireRoot, Range, Prefix, or Postfix.
type PathCoverage interface {
	isCoverage()
	Kind() string
}

type EntireRootCoverage struct{ Root vertex.Token }

func (EntireRootCoverage) isCoverage()  {}
func (EntireRootCoverage) Kind() string { return "EntireRoot" }

// RangeCoverage is an interior partial match: the match begins after
// the root's own start and ends before the root's own end. Path
// carries the full Start/End descent (spec §3 "Range(IndexRangePath,…)"),
// the same pair the split planner below consumes to locate the
// overlapping parent entries.
type RangeCoverage struct {
	Path        path.IndexRangePath
	StartOffset path.AtomPosition
	EndOffset   path.AtomPosition
}

func (RangeCoverage) isCoverage()  {}
func (RangeCoverage) Kind() string { return "Range" }

// PrefixCoverage is a left-anchored partial match: the match begins at
// the root's own start boundary but ends before the root's full width.
type PrefixCoverage struct {
	End         path.RolePath
	StartOffset path.AtomPosition
	EndOffset   path.AtomPosition
}

func (PrefixCoverage) isCoverage()  {}
func (PrefixCoverage) Kind() string { return "Prefix" }

// PostfixCoverage is a right-anchored partial match: the match ends at
// the root's own end boundary but begins after position 0.
type PostfixCoverage struct {
	Start       path.RolePath
	StartOffset path.AtomPosition
	EndOffset   path.AtomPosition
}

func (PostfixCoverage) isCoverage()  {}
func (PostfixCoverage) Kind() string { return "Postfix" }

// Response is the full hand-off from a search: the populated trace
// cache, the coverage classification, and the two atom positions
// (checkpoint and current) spec §9's design note calls for.
type Response struct {
	Cache          *trace.Cache
	Coverage       PathCoverage
	root           vertex.Token
	startPos       path.AtomPosition
	checkpointPos  path.AtomPosition
	currentPos     path.AtomPosition
	startPath      path.RolePath
	endPath        path.RolePath
	queryExhausted bool
}

func (r *Response) RootToken() vertex.Token { return r.root }

// StartOffset is where the matched region begins within RootToken's
// coordinate frame — not part of spec §3's Response shape, but needed
// by the split planner to size the overlap alongside CheckpointPosition.
func (r *Response) StartOffset() path.AtomPosition { return r.startPos }

// StartPath and EndPath are the role-path descents from RootToken to
// the match's start and end boundaries, independent of which
// PathCoverage variant the match classified as — the split planner
// consumes these directly rather than re-deriving entry indices from
// the root's pattern on its own.
func (r *Response) StartPath() path.RolePath { return r.startPath }
func (r *Response) EndPath() path.RolePath   { return r.endPath }

// IsComplete reports whether the coverage is EntireRoot.
func (r *Response) IsComplete() bool {
	_, ok := r.Coverage.(EntireRootCoverage)
	return ok
}

// QueryExhausted reports whether every query atom was consumed.
func (r *Response) QueryExhausted() bool { return r.queryExhausted }

// CheckpointPosition is the last confirmed-matched atom position
// (spec §9 "CursorPosition with two atom positions" — default accessor).
func (r *Response) CheckpointPosition() path.AtomPosition { return r.checkpointPos }

// CurrentPosition is the speculative cursor's own position: equal to
// CheckpointPosition when the walk stopped because the available
// entries or the query ran out, but one atom further when it stopped
// because a candidate comparison was attempted and rejected (spec §9
// "CursorPosition with two atom positions").
func (r *Response) CurrentPosition() path.AtomPosition { return r.currentPos }

// branchCandidate is one reachable (root, span) pair discovered while
// climbing from the query's first atom toward its ancestors.
type branchCandidate struct {
	root         vertex.ID
	rootWidth    uint32
	start        path.AtomPosition
	end          path.AtomPosition
	currentEnd   path.AtomPosition
	qConsumed    int
	entryAligned bool
}

// rootSeed is the unit of work in the width-ordered priority queue:
// the next (vertex, pattern, entry) triple to try extending a match
// from, together with how much of the query and how much cumulative
// progress has already been confirmed on the way to reaching it.
type rootSeed struct {
	vertexID   vertex.ID
	pattern    vertex.PatternID
	childEntry int
	qRemain    []vertex.Token
	qConsumed  int

	// priorStart is the offset, within vertexID's own span, at which the
	// match actually began — nonzero once escalation has climbed past a
	// composite entry that was itself entered partway through (the
	// initial query atom matched somewhere inside it, not at its own
	// position 0). Needed because the "start" reported for a candidate
	// must be the query's true first-atom position, not just the
	// matched entry's own boundary within its parent.
	priorStart path.AtomPosition
}

func seedWidth(store *vertex.Store, s rootSeed) uint32 {
	w, _ := store.Width(s.vertexID)
	return w
}

// flattenAtoms recursively unfolds a token to its atom sequence via
// the vertex's lowest-numbered pattern (all patterns of a vertex
// unfold to the same string, invariant 6, so any one will do).
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

// locateRolePath descends from root toward the atom boundary at pos
// (exclusive, when end is true) building the same Location-at-a-time
// descent PathCursor walks, so a Response's coverage can name the
// exact entries involved instead of just an atom offset. Mirrors
// split.entryContaining's pos/pos-1 handling at each level, recursing
// through composite entries rather than stopping at the root's own
// pattern.
func locateRolePath(store *vertex.Store, role path.Role, root vertex.ID, pos path.AtomPosition, end bool) path.RolePath {
	rp := path.RolePath{Role: role, Root: root}
	cur := root
	target := pos
	first := true
	for {
		pid, pattern, ok := store.LowestPattern(cur)
		if !ok {
			break
		}
		idx := -1
		var base path.AtomPosition
		for i, e := range pattern {
			w := path.AtomPosition(e.Width)
			t := target
			if end {
				if t == 0 {
					break
				}
				t--
			}
			if t >= base && t < base+w {
				idx = i
				break
			}
			base += w
		}
		if idx < 0 {
			break
		}
		rp.Steps = append(rp.Steps, vertex.Location{Parent: cur, Pattern: pid, Entry: idx})
		if first {
			rp.RootEntry = idx
			first = false
		}
		target -= base
		cur = pattern[idx].ID
	}
	return rp
}

// FindAncestor performs the ancestor search described in spec §4.4:
// it climbs from the query's first atom through containing parents,
// using a width-ordered priority queue of root seeds so the smallest
// containing ancestor is always explored before any larger one, and
// keeps extending the match even after the first root-level success
// per the substring-graph priority invariant (scenario: repeated
// pattern ancestry, ab/abab/ababab — the first match at abab must not
// terminate the search).
func FindAncestor(store *vertex.Store, query []vertex.Token) (*Response, error) {
	return run(store, query, false)
}

// FindPattern is FindAncestor restricted to exact pattern endings
// (spec §4.7): a candidate only qualifies if its match ends exactly
// on an existing entry boundary of the pattern it climbed through,
// rather than stopping partway into a composite entry (e.g. matching
// only "l" of an "ld" entry, as in the partial-match scenario).
func FindPattern(store *vertex.Store, query []vertex.Token) (*Response, error) {
	return run(store, query, true)
}

func run(store *vertex.Store, query []vertex.Token, requireEntryAligned bool) (*Response, error) {
	if len(query) == 0 {
		return nil, hgerrors.ErrEmptyPattern
	}
	var qAtoms []vertex.Token
	for _, t := range query {
		qAtoms = append(qAtoms, flattenAtoms(store, t)...)
	}

	first := qAtoms[0]
	parents := store.Parents(first.ID)
	if len(parents) == 0 {
		return nil, hgerrors.ErrNoMatch
	}

	cache := trace.New()
	var best *branchCandidate

	queue := binaryheap.NewWith(func(a, b *rootSeed) int {
		wa, wb := seedWidth(store, *a), seedWidth(store, *b)
		if wa < wb {
			return -1
		}
		if wa > wb {
			return 1
		}
		return 0
	})
	for _, p := range parents {
		queue.Push(&rootSeed{
			vertexID:   p.Parent,
			pattern:    p.Pattern,
			childEntry: p.Entry,
			qRemain:    qAtoms[1:],
			qConsumed:  1,
		})
	}

	for !queue.Empty() {
		seed, _ := queue.Pop()
		cand, nextSeeds, err := exploreOne(store, *seed, cache)
		if err != nil {
			return nil, err
		}
		if cand != nil && (!requireEntryAligned || cand.entryAligned) {
			if best == nil || better(*cand, *best) {
				hglog.Default().Debug("search: new best candidate",
					"root", cand.root, "start", cand.start, "end", cand.end, "qConsumed", cand.qConsumed)
				best = cand
			}
		}
		for i := range nextSeeds {
			queue.Push(&nextSeeds[i])
		}
	}

	if best == nil {
		return nil, hgerrors.ErrNoMatch
	}
	return buildResponse(store, *best, cache, len(qAtoms)), nil
}

func better(a, b branchCandidate) bool {
	if a.qConsumed != b.qConsumed {
		return a.qConsumed > b.qConsumed
	}
	return a.rootWidth < b.rootWidth
}

// exploreOne processes a single root seed: it walks a Checkpointed
// cursor (spec §4.2, §9 "Candidate vs matched state") over the parent
// pattern's entries following childEntry, comparing each speculative
// advance against the query remainder one atom at a time, and
// confirming or rejecting it before looking at the next. A rejected
// candidate ends the walk without disturbing the checkpoint it was
// derived from. If the whole parent region confirms while query atoms
// remain, this seeds further work from the parent's own parents — the
// "advance_index_cursor exhausted -> parent exploration" transition of
// spec §4.4's within-root state machine, expressed as incremental
// seeds pushed back onto the priority queue rather than recursion.
func exploreOne(store *vertex.Store, seed rootSeed, cache *trace.Cache) (*branchCandidate, []rootSeed, error) {
	pattern, ok := store.Pattern(seed.vertexID, seed.pattern)
	if !ok {
		return nil, nil, nil
	}
	offsets := make([]path.AtomPosition, len(pattern)+1)
	for i, e := range pattern {
		offsets[i+1] = offsets[i] + path.AtomPosition(e.Width)
	}
	start := offsets[seed.childEntry] + seed.priorStart
	childWidth := pattern[seed.childEntry].Width

	// A vertex with several patterns can be entered at the same position
	// through more than one of them; the cache keeps one edge per
	// position, the first one recorded.
	if _, seen := cache.BottomUp(seed.vertexID, offsets[seed.childEntry]); !seen {
		if err := cache.RecordBottomUp(seed.vertexID, offsets[seed.childEntry], trace.Edge{
			Target: seed.vertexID,
			Child:  vertex.Location{Parent: seed.vertexID, Pattern: seed.pattern, Entry: seed.childEntry},
		}); err != nil {
			return nil, nil, err
		}
	}

	// entryBoundaries[i] is the cumulative atom count through the i-th
	// subsequent entry, used to tell whether the walk landed exactly on
	// an entry's own end rather than partway into one (find_pattern's
	// "exact pattern endings" restriction).
	var atomsAfter []vertex.Token
	var entryBoundaries []int
	for i := seed.childEntry + 1; i < len(pattern); i++ {
		atomsAfter = append(atomsAfter, flattenAtoms(store, pattern[i])...)
		entryBoundaries = append(entryBoundaries, len(atomsAfter))
	}

	rp := path.RolePath{Role: path.RoleStart, Root: seed.vertexID, RootEntry: seed.childEntry}
	checkpoint := path.NewCheckpoint(path.NewMatchedCursor(rp, atomsAfter))
	mismatched := false
	for qIdx := 0; qIdx < len(seed.qRemain); qIdx++ {
		cur, ok := checkpoint.Checkpoint.Current()
		if !ok {
			break // atomsAfter exhausted; no mismatch, just ran out of entries
		}
		cand, err := checkpoint.Checkpoint.Advance()
		if err != nil {
			break
		}
		if cur.ID != seed.qRemain[qIdx].ID {
			_ = checkpoint.WithCandidate(cand).Reject()
			mismatched = true
			break
		}
		checkpoint = checkpoint.WithCandidate(cand).Confirm()
	}
	l := int(checkpoint.CheckpointPosition())

	qConsumed := seed.qConsumed + l
	// end is measured from the entry's own boundary, not from start:
	// priorStart only shifts where the match began, not how much of
	// the current entry and trailing atoms it covers.
	end := offsets[seed.childEntry] + path.AtomPosition(childWidth) + path.AtomPosition(l)
	currentEnd := end
	if mismatched {
		currentEnd = end + 1
	}
	rootWidth, _ := store.Width(seed.vertexID)

	aligned := l == 0
	for _, b := range entryBoundaries {
		if l == b {
			aligned = true
			break
		}
	}

	cand := &branchCandidate{root: seed.vertexID, rootWidth: rootWidth, start: start, end: end, currentEnd: currentEnd, qConsumed: qConsumed, entryAligned: aligned}

	qLeft := len(seed.qRemain) - l
	if qLeft <= 0 || l != len(atomsAfter) {
		// Either the query is fully consumed (no larger root can beat
		// it), or this parent's own pattern still has an unmatched
		// entry (a genuine mismatch) — both end this branch here.
		return cand, nil, nil
	}

	var next []rootSeed
	for _, gp := range store.Parents(seed.vertexID) {
		gpPattern, ok := store.Pattern(gp.Parent, gp.Pattern)
		if !ok {
			continue
		}
		var gpOffset path.AtomPosition
		for _, e := range gpPattern[:gp.Entry] {
			gpOffset += path.AtomPosition(e.Width)
		}
		if _, seen := cache.TopDown(gp.Parent, gpOffset); !seen {
			if err := cache.RecordTopDown(gp.Parent, gpOffset, trace.Edge{
				Target: seed.vertexID,
				Child:  vertex.Location{Parent: gp.Parent, Pattern: gp.Pattern, Entry: gp.Entry},
			}); err != nil {
				return nil, nil, err
			}
		}
		next = append(next, rootSeed{
			vertexID:   gp.Parent,
			pattern:    gp.Pattern,
			childEntry: gp.Entry,
			qRemain:    seed.qRemain[l:],
			qConsumed:  qConsumed,
			priorStart: start,
		})
	}
	return cand, next, nil
}

func buildResponse(store *vertex.Store, best branchCandidate, cache *trace.Cache, totalQueryAtoms int) *Response {
	root := vertex.Token{ID: best.root, Width: best.rootWidth}
	resp := &Response{
		Cache:          cache,
		root:           root,
		startPos:       best.start,
		checkpointPos:  best.end,
		currentPos:     best.currentEnd,
		queryExhausted: best.qConsumed >= totalQueryAtoms,
	}

	isEntireRoot := best.start == 0 && uint32(best.end) == best.rootWidth
	if !isEntireRoot {
		// Role paths are only meaningful once split needs to locate
		// entries within the root's own pattern; a complete match has
		// no overlap for split/join to consume.
		resp.startPath = locateRolePath(store, path.RoleStart, best.root, best.start, false)
		resp.endPath = locateRolePath(store, path.RoleEnd, best.root, best.end, true)
	}

	switch {
	case isEntireRoot:
		resp.Coverage = EntireRootCoverage{Root: root}
	case best.start == 0:
		resp.Coverage = PrefixCoverage{End: resp.endPath, StartOffset: best.start, EndOffset: best.end}
	case uint32(best.end) == best.rootWidth:
		resp.Coverage = PostfixCoverage{Start: resp.startPath, StartOffset: best.start, EndOffset: best.end}
	default:
		resp.Coverage = RangeCoverage{
			Path:        path.IndexRangePath{Root: best.root, Start: resp.startPath, End: resp.endPath},
			StartOffset: best.start,
			EndOffset:   best.end,
		}
	}
	return resp
}
