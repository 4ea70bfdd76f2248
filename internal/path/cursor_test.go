package path

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mankinskin/hypergraph/internal/vertex"
)

func newPattern(t *testing.T, s *vertex.Store, n int) []vertex.Token {
	t.Helper()
	toks := make([]vertex.Token, n)
	for i := range toks {
		tok, err := s.CreateVertex(1)
		require.NoError(t, err)
		toks[i] = tok
	}
	return toks
}

func TestPathCursor_CurrentAndAtEnd(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 3)
	c := NewMatchedCursor(RolePath{}, pattern)

	tok, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, pattern[0], tok)
	assert.False(t, c.AtEnd())
}

func TestPathCursor_Current_FalseAtEnd(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 1)
	c := NewMatchedCursor(RolePath{}, pattern)
	c.Index = 1

	_, ok := c.Current()
	assert.False(t, ok)
	assert.True(t, c.AtEnd())
}

func TestPathCursor_AdvanceThenMarkMatch(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 2)
	c := NewMatchedCursor(RolePath{}, pattern)

	cand, err := c.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, cand.Index)
	assert.Equal(t, AtomPosition(1), cand.Offset)

	matched := cand.MarkMatch()
	assert.Equal(t, 1, matched.Index)
	tok, ok := matched.Current()
	require.True(t, ok)
	assert.Equal(t, pattern[1], tok)
}

func TestPathCursor_AdvanceExhausted(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 1)
	c := NewMatchedCursor(RolePath{}, pattern)

	cand, err := c.Advance()
	require.NoError(t, err)
	matched := cand.MarkMatch()

	_, err = matched.Advance()
	require.Error(t, err)
	var exhausted ErrExhausted
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 1, exhausted.Index)
}

func TestPathCursor_MarkMismatchIsTerminal(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 2)
	c := NewMatchedCursor(RolePath{}, pattern)

	cand, err := c.Advance()
	require.NoError(t, err)
	mismatched := cand.MarkMismatch()
	assert.Equal(t, cand.Index, mismatched.Index)
	assert.Equal(t, cand.Offset, mismatched.Offset)
}

func TestPathCursor_AsCandidatePreservesPosition(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 2)
	c := NewMatchedCursor(RolePath{}, pattern)
	cand := c.AsCandidate()
	assert.Equal(t, c.Index, cand.Index)
	assert.Equal(t, c.Offset, cand.Offset)
}

func TestCheckpointed_ConfirmPromotesCandidate(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 2)
	c := NewMatchedCursor(RolePath{}, pattern)
	cp := NewCheckpoint(c)

	cand, err := c.Advance()
	require.NoError(t, err)
	withCand := cp.WithCandidate(cand)
	assert.Equal(t, cand, withCand.Candidate())

	confirmed := withCand.Confirm()
	assert.Equal(t, AtomPosition(1), confirmed.CheckpointPosition())
}

func TestCheckpointed_RejectKeepsOriginalCheckpoint(t *testing.T) {
	s := vertex.NewStore()
	pattern := newPattern(t, s, 2)
	c := NewMatchedCursor(RolePath{}, pattern)
	cp := NewCheckpoint(c)

	cand, err := c.Advance()
	require.NoError(t, err)
	withCand := cp.WithCandidate(cand)

	rejected := withCand.Reject()
	assert.Equal(t, cp.CheckpointPosition(), rejected.CheckpointPosition())
}
