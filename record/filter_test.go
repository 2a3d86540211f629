package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterLiteralAndRegex(t *testing.T) {
	f, err := NewFilter("top.clk, re:^top\\.cpu\\..*")
	require.NoError(t, err)

	require.True(t, f.Match("top.clk"))
	require.True(t, f.Match("top.cpu.pc"))
	require.False(t, f.Match("top.mem.addr"))
}

func TestFilterEmpty(t *testing.T) {
	f, err := NewFilter("")
	require.NoError(t, err)
	require.True(t, f.Empty())
	require.False(t, f.Match("anything"))
}

func TestFilterBadRegex(t *testing.T) {
	_, err := NewFilter("re:(unclosed")
	require.Error(t, err)
}
