package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeErrorUnwrap(t *testing.T) {
	de := New(KindInvalidToken, ErrInvalidToken, []byte("$var wire 1 ! a $end"), 5)
	require.ErrorIs(t, de, ErrInvalidToken)
	require.Contains(t, de.Error(), "InvalidToken")
	require.Contains(t, de.Error(), "offset 5")
}

func TestSnippetMarksOffset(t *testing.T) {
	data := []byte("0123456789")
	s := Snippet(data, 3)
	require.Contains(t, s, "0123456789")
	lines := splitLines(s)
	require.Len(t, lines, 2)
	require.Equal(t, len(lines[1])-1, 3)
	require.Equal(t, byte('|'), lines[1][len(lines[1])-1])
}

func TestSnippetOutOfRange(t *testing.T) {
	require.Equal(t, "", Snippet([]byte("abc"), -1))
	require.Equal(t, "", Snippet([]byte("abc"), 100))
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])

	return out
}

func TestSentinelsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrInvalidToken, ErrInvalidCommand))
}
