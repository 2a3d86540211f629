package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassOf(t *testing.T) {
	require.Equal(t, ClassWhitespace, ClassOf(' '))
	require.Equal(t, ClassCommandStart, ClassOf('$'))
	require.Equal(t, ClassTimeStart, ClassOf('#'))
	require.Equal(t, ClassVectorStart, ClassOf('b'))
	require.Equal(t, ClassVectorStart, ClassOf('B'))
	require.Equal(t, ClassRealStart, ClassOf('r'))
	require.Equal(t, ClassStringStart, ClassOf('s'))
	require.Equal(t, ClassScalar2State, ClassOf('0'))
	require.Equal(t, ClassScalar4State, ClassOf('x'))
	require.Equal(t, ClassScalar16State, ClassOf('H'))
	require.Equal(t, ClassInvalid, ClassOf('!'))
}

func TestStateLevels(t *testing.T) {
	require.Equal(t, 2, StateOf('0').Level())
	require.Equal(t, 2, StateOf('1').Level())
	require.Equal(t, 4, StateOf('x').Level())
	require.Equal(t, 4, StateOf('z').Level())
	require.Equal(t, 16, StateOf('H').Level())
	require.True(t, StateOf('x').IsX())
	require.False(t, StateOf('0').IsX())
}

func TestBinaryStateOf(t *testing.T) {
	require.Equal(t, State1, BinaryStateOf('1'))
	require.Equal(t, StateH, BinaryStateOf('H'))
}
