package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mankinskin/hypergraph/internal/vertex"
)

func TestTable_GetOrCreate_Idempotent(t *testing.T) {
	store := vertex.NewStore()
	table := NewTable[rune](store)

	a1, err := table.GetOrCreate('a')
	require.NoError(t, err)
	a2, err := table.GetOrCreate('a')
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.True(t, a1.IsAtom())
	assert.Equal(t, uint32(1), a1.Width)
}

func TestTable_DistinctValuesGetDistinctTokens(t *testing.T) {
	store := vertex.NewStore()
	table := NewTable[rune](store)

	a, err := table.GetOrCreate('a')
	require.NoError(t, err)
	b, err := table.GetOrCreate('b')
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, table.Len())
}

func TestTable_Value_RoundTrips(t *testing.T) {
	store := vertex.NewStore()
	table := NewTable[rune](store)

	tok, err := table.GetOrCreate('z')
	require.NoError(t, err)

	v, ok := table.Value(tok.ID)
	require.True(t, ok)
	assert.Equal(t, 'z', v)
}

func TestTable_Lookup_MissingReturnsFalse(t *testing.T) {
	store := vertex.NewStore()
	table := NewTable[rune](store)
	_, ok := table.Lookup('q')
	assert.False(t, ok)
}
