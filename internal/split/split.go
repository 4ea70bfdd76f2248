// Package split implements the split planner (spec §4.5, C6): it
// turns a search response into an InitInterval and derives, at the
// pattern-entry level, which entries of the enclosing parent overlap
// the confirmed match extent.
package split

import (
	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/path"
	"github.com/mankinskin/hypergraph/internal/trace"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

// InitInterval is the hand-off from search to insert (spec §3).
// StartBound is carried alongside the spec's {root, cache, end_bound}
// triple because the join builder needs the overlap's left edge as
// well as its right edge to size the wrapper. StartPath/EndPath are
// the Response's role-path descents to those same two boundaries
// (search.Response.StartPath/EndPath) — when present, PlanSplit reads
// the overlapping entries straight off them instead of re-deriving
// entry indices from the bounds.
type InitInterval struct {
	Root       vertex.Token
	Cache      *trace.Cache
	StartBound path.AtomPosition
	EndBound   path.AtomPosition
	StartPath  path.RolePath
	EndPath    path.RolePath
}

// Classification names the shape of the overlap within the parent
// pattern (spec §4.5 step 2).
type Classification string

const (
	Prefix Classification = "Prefix"
	Postfix Classification = "Postfix"
	Infix   Classification = "Infix"
)

// Plan is the derived split: which entries of Parent's Pattern the
// insertion overlaps, and how that range sits relative to the
// pattern's own boundaries.
type Plan struct {
	Parent         vertex.ID
	Pattern        vertex.PatternID
	IStart, IEnd   int // inclusive entry range that overlaps the insertion
	Classification Classification
}

// PlanSplit derives a Plan from interval, rejecting an end_bound of 0
// (nothing confirmed to insert against) and a missing cache entry for
// the interval's root (spec §4.5 rules 2-4).
func PlanSplit(store *vertex.Store, interval InitInterval) (*Plan, error) {
	if interval.EndBound == 0 {
		return nil, hgerrors.ErrInvalidEndBound
	}
	if _, ok := interval.Cache.Get(interval.Root.ID); !ok {
		return nil, hgerrors.ErrCacheInconsistency.WithDetail("vertex", itoa(interval.Root.ID))
	}

	pid, pattern, ok := store.LowestPattern(interval.Root.ID)
	if !ok {
		return nil, hgerrors.ErrCacheInconsistency.WithDetail("vertex", itoa(interval.Root.ID))
	}

	offsets := make([]path.AtomPosition, len(pattern)+1)
	for i, e := range pattern {
		offsets[i+1] = offsets[i] + path.AtomPosition(e.Width)
	}

	// Prefer the role paths search already descended: they name the
	// root-level entry directly, rather than this Plan re-deriving it
	// by walking offsets on its own. Callers that construct an
	// InitInterval without paths (e.g. exercising PlanSplit directly
	// against raw bounds) fall back to the offset search below.
	var iStart, iEnd int
	if len(interval.StartPath.Steps) > 0 && len(interval.EndPath.Steps) > 0 {
		iStart = interval.StartPath.RootEntry
		iEnd = interval.EndPath.RootEntry
	} else {
		iStart = entryContaining(offsets, interval.StartBound, false)
		iEnd = entryContaining(offsets, interval.EndBound, true)
	}
	if iStart < 0 || iEnd < 0 || iStart > iEnd || iEnd >= len(pattern) {
		return nil, hgerrors.ErrCacheInconsistency.WithDetail("reason", "overlap range out of bounds")
	}

	var class Classification
	switch {
	case iStart == 0 && iEnd == len(pattern)-1:
		class = Infix // the whole pattern: treated as interior, caller should have taken EntireRoot instead
	case iStart == 0:
		class = Prefix
	case iEnd == len(pattern)-1:
		class = Postfix
	default:
		class = Infix
	}

	return &Plan{Parent: interval.Root.ID, Pattern: pid, IStart: iStart, IEnd: iEnd, Classification: class}, nil
}

// entryContaining finds the entry index whose atom span contains pos.
// When end is true, pos is treated as an exclusive upper bound (the
// entry containing pos-1); otherwise pos is an inclusive lower bound.
func entryContaining(offsets []path.AtomPosition, pos path.AtomPosition, end bool) int {
	target := pos
	if end {
		if target == 0 {
			return -1
		}
		target--
	}
	for i := 0; i+1 < len(offsets); i++ {
		if target >= offsets[i] && target < offsets[i+1] {
			return i
		}
	}
	if !end && pos == offsets[len(offsets)-1] {
		return len(offsets) - 2
	}
	return -1
}

func itoa(id vertex.ID) string {
	return vertex.Token{ID: id}.String()
}
