package wavevar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracewave/wfdecode/record"
)

func TestCreateSignalsAppliesFilters(t *testing.T) {
	scope := record.NewRootScope()
	groups := []Group{
		{Name: "clk", DataType: record.DataLogic, Width: 1, Scope: scope, Handles: []uint64{1}},
		{Name: "rst", DataType: record.DataLogic, Width: 1, Scope: scope, Handles: []uint64{2}},
	}

	include, err := record.NewFilter("clk")
	require.NoError(t, err)
	exclude, err := record.NewFilter("")
	require.NoError(t, err)

	signals, handles := CreateSignals(groups, include, exclude)
	require.Len(t, signals, 1)
	require.Equal(t, "clk", signals[0].Name)
	require.Equal(t, [][]uint64{{1}}, handles)
	require.Len(t, scope.Signals, 1)
}

func TestNewWritersGroupedAndPlain(t *testing.T) {
	scope := record.NewRootScope()
	plain := &record.Signal{Name: "clk", Scope: scope, DataType: record.DataLogic, Width: 1}
	grouped := &record.Signal{Name: "data", Scope: scope, DataType: record.DataLogic, Width: 2}

	signals := []*record.Signal{plain, grouped}
	handles := [][]uint64{{1}, {2, 3}}

	idx := NewWriters(signals, handles, DefaultWriterKind, nil)
	require.Equal(t, 3, idx.Len())

	w1, ok := idx.Get(1)
	require.True(t, ok)
	require.Same(t, plain, w1.Signal)

	w2, ok := idx.Get(2)
	require.True(t, ok)
	require.Same(t, grouped, w2.Signal)

	w3, ok := idx.Get(3)
	require.True(t, ok)
	require.Same(t, w2, w3, "both member handles must resolve to the same grouped writer")
}
