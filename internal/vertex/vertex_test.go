package vertex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAtoms(t *testing.T, s *Store, n int) []Token {
	t.Helper()
	toks := make([]Token, n)
	for i := range toks {
		tok, err := s.CreateVertex(1)
		require.NoError(t, err)
		toks[i] = tok
	}
	return toks
}

func TestAddPattern_RejectsFewerThanTwoEntries(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 1)
	v, err := s.CreateVertex(1)
	require.NoError(t, err)
	_, err = s.AddPattern(v, atoms[:1])
	assert.Error(t, err)
}

func TestAddPattern_RejectsWidthMismatch(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 2)
	v, err := s.CreateVertex(3) // should be 1+1=2, not 3
	require.NoError(t, err)
	_, err = s.AddPattern(v, atoms)
	assert.Error(t, err)
}

func TestAddPattern_RecordsBidirectionalParents(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 2)
	v, err := s.CreateVertex(2)
	require.NoError(t, err)
	pid, err := s.AddPattern(v, atoms)
	require.NoError(t, err)

	for i, a := range atoms {
		parents := s.Parents(a.ID)
		require.Len(t, parents, 1)
		assert.Equal(t, Location{Parent: v.ID, Pattern: pid, Entry: i}, parents[0])
	}
}

func TestAddPattern_AllowsMultiplePatternsOnSameVertex(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 3) // a, b, c all width 1 -> width-3 vertex
	v, err := s.CreateVertex(3)
	require.NoError(t, err)

	aa, err := s.CreateVertex(2)
	require.NoError(t, err)
	_, err = s.AddPattern(aa, []Token{atoms[0], atoms[0]})
	require.NoError(t, err)

	p1, err := s.AddPattern(v, []Token{atoms[0], aa}) // a, aa
	require.NoError(t, err)
	p2, err := s.AddPattern(v, []Token{aa, atoms[0]}) // aa, a
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	patterns := s.Patterns(v.ID)
	assert.Len(t, patterns, 2)
}

func TestStats_CountsAtomsVerticesPatterns(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 2)
	v, err := s.CreateVertex(2)
	require.NoError(t, err)
	_, err = s.AddPattern(v, atoms)
	require.NoError(t, err)

	st := s.Stats()
	assert.Equal(t, 3, st.Vertices)
	assert.Equal(t, 2, st.Atoms)
	assert.Equal(t, 1, st.Patterns)
}

func TestIsAtom_TrueOnlyForPatternlessWidthOne(t *testing.T) {
	s := NewStore()
	atoms := newAtoms(t, s, 2)
	v, err := s.CreateVertex(2)
	require.NoError(t, err)
	_, err = s.AddPattern(v, atoms)
	require.NoError(t, err)

	assert.True(t, s.IsAtom(atoms[0].ID))
	assert.False(t, s.IsAtom(v.ID))
}
