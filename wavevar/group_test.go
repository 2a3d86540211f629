package wavevar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracewave/wfdecode/record"
)

func bitVar(name string, handle uint64, scope *record.Scope) PreVariable {
	return PreVariable{Name: name, Handle: handle, Width: 1, DataType: record.DataLogic, Scope: scope}
}

func TestGroupVectorsDisabled(t *testing.T) {
	scope := record.NewRootScope()
	vars := []PreVariable{bitVar("data[3]", 1, scope), bitVar("data[2]", 2, scope)}
	groups := GroupVectors(vars, false)
	require.Len(t, groups, 2)
}

func TestGroupVectorsMergesConsecutiveRun(t *testing.T) {
	scope := record.NewRootScope()
	vars := []PreVariable{
		bitVar("data[3]", 10, scope),
		bitVar("data[2]", 11, scope),
		bitVar("data[1]", 12, scope),
		bitVar("data[0]", 13, scope),
	}
	groups := GroupVectors(vars, true)
	require.Len(t, groups, 1)
	require.Equal(t, "data", groups[0].Name)
	require.Equal(t, 4, groups[0].Width)
	require.Equal(t, []uint64{10, 11, 12, 13}, groups[0].Handles)
}

func TestGroupVectorsBreaksOnGap(t *testing.T) {
	scope := record.NewRootScope()
	vars := []PreVariable{
		bitVar("data[3]", 10, scope),
		bitVar("data[1]", 12, scope), // gap: skips index 2
	}
	groups := GroupVectors(vars, true)
	require.Len(t, groups, 2, "a non-contiguous run must not merge")
}

func TestGroupVectorsLeavesMultiBitVarsAlone(t *testing.T) {
	scope := record.NewRootScope()
	vars := []PreVariable{{Name: "bus", Handle: 1, Width: 8, DataType: record.DataLogic, Scope: scope}}
	groups := GroupVectors(vars, true)
	require.Len(t, groups, 1)
	require.Equal(t, "bus", groups[0].Name)
	require.Equal(t, []uint64{1}, groups[0].Handles)
}
