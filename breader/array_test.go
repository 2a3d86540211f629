package breader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayReaderBasic(t *testing.T) {
	r := NewArrayReader([]byte("0123456789"))
	require.Equal(t, 10, r.Len())

	b, err := r.Bytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte("012"), b)
	require.Equal(t, 3, r.Pos())

	require.NoError(t, r.Seek(8))
	b, err = r.Bytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), b)

	_, err = r.Bytes(1)
	require.Error(t, err)
}

func TestArrayReaderPeekAndByte(t *testing.T) {
	r := NewArrayReader([]byte("ab"))
	p, err := r.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), p)

	b, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), b)

	b, err = r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)

	_, err = r.ReadByte()
	require.Error(t, err)
}

func TestArrayReaderSliceAndAt(t *testing.T) {
	r := NewArrayReader([]byte("hello"))
	s, err := r.Slice(1, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("ell"), s)

	b, err := r.At(4)
	require.NoError(t, err)
	require.Equal(t, byte('o'), b)

	_, err = r.Slice(3, 1)
	require.Error(t, err)

	_, err = r.At(-1)
	require.Error(t, err)
}

func TestArrayReaderSeekOutOfRange(t *testing.T) {
	r := NewArrayReader([]byte("x"))
	require.Error(t, r.Seek(-1))
	require.Error(t, r.Seek(2))
}
