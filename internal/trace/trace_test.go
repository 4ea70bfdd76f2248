package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mankinskin/hypergraph/internal/hgerrors"
	"github.com/mankinskin/hypergraph/internal/path"
	"github.com/mankinskin/hypergraph/internal/vertex"
)

func TestCache_RecordAndLookupBottomUp(t *testing.T) {
	c := New()
	e := Edge{Target: 7, Child: vertex.Location{Parent: 7, Pattern: 0, Entry: 1}}

	err := c.RecordBottomUp(3, path.AtomPosition(2), e)
	require.NoError(t, err)

	got, ok := c.BottomUp(3, path.AtomPosition(2))
	require.True(t, ok)
	assert.Equal(t, e, got)

	_, ok = c.TopDown(3, path.AtomPosition(2))
	assert.False(t, ok)
}

func TestCache_RecordTopDown(t *testing.T) {
	c := New()
	e := Edge{Target: 9, Child: vertex.Location{Parent: 9, Pattern: 1, Entry: 0}}

	require.NoError(t, c.RecordTopDown(4, path.AtomPosition(0), e))

	got, ok := c.TopDown(4, path.AtomPosition(0))
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestCache_DuplicateWriteIsIdempotent(t *testing.T) {
	c := New()
	e := Edge{Target: 1, Child: vertex.Location{Parent: 1, Pattern: 0, Entry: 0}}

	require.NoError(t, c.RecordBottomUp(5, 0, e))
	require.NoError(t, c.RecordBottomUp(5, 0, e))
}

func TestCache_ContradictoryWriteErrors(t *testing.T) {
	c := New()
	e1 := Edge{Target: 1, Child: vertex.Location{Parent: 1, Pattern: 0, Entry: 0}}
	e2 := Edge{Target: 2, Child: vertex.Location{Parent: 2, Pattern: 0, Entry: 0}}

	require.NoError(t, c.RecordBottomUp(5, 0, e1))
	err := c.RecordBottomUp(5, 0, e2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hgerrors.ErrCacheInconsistency))
}

func TestCache_GetReturnsIndependentSnapshot(t *testing.T) {
	c := New()
	e := Edge{Target: 1, Child: vertex.Location{Parent: 1, Pattern: 0, Entry: 0}}
	require.NoError(t, c.RecordBottomUp(5, 0, e))

	vc, ok := c.Get(5)
	require.True(t, ok)
	vc.BU[99] = Edge{Target: 42}

	_, ok = c.BottomUp(5, 99)
	assert.False(t, ok, "mutating the snapshot must not affect the cache")
}

func TestCache_UnknownVertexLookupsMiss(t *testing.T) {
	c := New()
	_, ok := c.Get(123)
	assert.False(t, ok)
	_, ok = c.BottomUp(123, 0)
	assert.False(t, ok)
	_, ok = c.TopDown(123, 0)
	assert.False(t, ok)
}
