package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordLifecycle(t *testing.T) {
	base, err := NewDomainBase(1, NS)
	require.NoError(t, err)

	r := NewRecord(base)
	require.False(t, r.IsOpen())

	require.NoError(t, r.Open(0))
	require.True(t, r.IsOpen())

	require.Error(t, r.Open(0), "double Open must fail")

	require.NoError(t, r.Close(100))
	require.False(t, r.IsOpen())
	require.Equal(t, int64(100), r.EndTime())

	require.Error(t, r.Close(200), "double Close must fail")
}

func TestRecordCloseBeforeOpen(t *testing.T) {
	base, _ := NewDomainBase(1, NS)
	r := NewRecord(base)
	require.Error(t, r.Close(0))
}

func TestDomainBaseRejectsBadFactor(t *testing.T) {
	_, err := NewDomainBase(7, NS)
	require.Error(t, err)
}

func TestScopeTree(t *testing.T) {
	root := NewRootScope()
	top := root.OpenChild("module", "top")
	same := root.OpenChild("module", "top")
	require.Same(t, top, same, "OpenChild must return the existing scope")

	cpu := top.OpenChild("module", "cpu")
	require.Equal(t, "top.cpu", cpu.Path())
	require.Equal(t, "top.cpu.clk", cpu.FullName("clk"))
}
