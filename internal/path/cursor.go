package path

import (
	"fmt"

	"github.com/mankinskin/hypergraph/internal/vertex"
)

// Matched, Candidate, and Mismatched are phantom type tags for
// PathCursor's CursorState. They carry no runtime storage; the
// compiler alone distinguishes "confirmed" from "speculative" cursors
// so a mismatched or candidate position can never be mistaken for a
// checkpoint (spec §4.2, §9 "Candidate vs matched state").
type Matched struct{}
type Candidate struct{}
type Mismatched struct{}

// ErrExhausted is returned by Advance when the cursor's pattern has
// no further entries.
type ErrExhausted struct{ Index int }

func (e ErrExhausted) Error() string {
	return fmt.Sprintf("cursor exhausted at index %d", e.Index)
}

// PathCursor is a position over a token sequence: the RolePath
// descended so far (possibly empty, for a flat query cursor), the
// Pattern currently being walked (the query's own tokens, or the
// active graph pattern's children), an entry Index into Pattern, the
// cumulative atom Offset consumed before Index, and a compile-time
// match state S.
type PathCursor[S any] struct {
	RolePath RolePath
	Pattern  []vertex.Token
	Index    int
	Offset   AtomPosition
}

// NewMatchedCursor starts a checkpointed cursor at the head of
// pattern, optionally recording rp as the descent that produced it.
func NewMatchedCursor(rp RolePath, pattern []vertex.Token) PathCursor[Matched] {
	return PathCursor[Matched]{RolePath: rp, Pattern: pattern}
}

// Current returns the token the cursor currently sits on.
func (c PathCursor[S]) Current() (vertex.Token, bool) {
	if c.Index < 0 || c.Index >= len(c.Pattern) {
		return vertex.Token{}, false
	}
	return c.Pattern[c.Index], true
}

// AtEnd reports whether the cursor has consumed every entry.
func (c PathCursor[S]) AtEnd() bool {
	return c.Index >= len(c.Pattern)
}

// AsCandidate promotes a confirmed cursor into a speculative one at
// the same position, ready to be compared.
func (c PathCursor[Matched]) AsCandidate() PathCursor[Candidate] {
	return PathCursor[Candidate]{RolePath: c.RolePath, Pattern: c.Pattern, Index: c.Index, Offset: c.Offset}
}

// Advance steps a confirmed cursor to the next entry and returns it as
// a Candidate awaiting comparison. Returns ErrExhausted and a zero
// Candidate if the pattern has no more entries; the receiver itself is
// left unchanged.
func (c PathCursor[Matched]) Advance() (PathCursor[Candidate], error) {
	if c.Index >= len(c.Pattern) {
		return PathCursor[Candidate]{}, ErrExhausted{Index: c.Index}
	}
	tok := c.Pattern[c.Index]
	return PathCursor[Candidate]{
		RolePath: c.RolePath,
		Pattern:  c.Pattern,
		Index:    c.Index + 1,
		Offset:   c.Offset + AtomPosition(tok.Width),
	}, nil
}

// MarkMatch demotes a speculative cursor back to confirmed after a
// successful comparison.
func (c PathCursor[Candidate]) MarkMatch() PathCursor[Matched] {
	return PathCursor[Matched]{RolePath: c.RolePath, Pattern: c.Pattern, Index: c.Index, Offset: c.Offset}
}

// MarkMismatch moves a speculative cursor to the Mismatched state. The
// state tag only distinguishes the cursor types; it does not restrict
// the method set: AsCandidate, Advance, MarkMatch and MarkMismatch are
// defined for every PathCursor[S], so a Mismatched cursor can still be
// turned back into a Candidate.
func (c PathCursor[Candidate]) MarkMismatch() PathCursor[Mismatched] {
	return PathCursor[Mismatched]{RolePath: c.RolePath, Pattern: c.Pattern, Index: c.Index, Offset: c.Offset}
}
