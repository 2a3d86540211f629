package identidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexArrayPath(t *testing.T) {
	idx := Build[string]([]uint64{5, 6, 7, 10}, nil)
	idx.Set(5, "five")
	idx.Set(10, "ten")

	v, ok := idx.Get(5)
	require.True(t, ok)
	require.Equal(t, "five", v)

	v, ok = idx.Get(10)
	require.True(t, ok)
	require.Equal(t, "ten", v)

	_, ok = idx.Get(6)
	require.False(t, ok)

	_, ok = idx.Get(999)
	require.False(t, ok)
}

func TestIndexSparseFallsBackToMap(t *testing.T) {
	idx := Build[int]([]uint64{1, 1 << 40}, nil)
	idx.Set(1, 1)
	idx.Set(1<<40, 2)

	v, ok := idx.Get(1 << 40)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestIndexEmpty(t *testing.T) {
	idx := Build[int](nil, nil)
	_, ok := idx.Get(1)
	require.False(t, ok)
	require.Equal(t, 0, idx.Len())
}

func TestHashKeyStable(t *testing.T) {
	require.Equal(t, HashKey([]byte("abc")), HashKey([]byte("abc")))
	require.NotEqual(t, HashKey([]byte("abc")), HashKey([]byte("abd")))
}
