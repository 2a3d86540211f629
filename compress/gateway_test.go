package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracewave/wfdecode/errs"
)

var pangram = []byte("the quick brown fox jumps over the lazy dog")

var zlibPangram = []byte{
	0x78, 0x9c, 0x2b, 0xc9, 0x48, 0x55, 0x28, 0x2c, 0xcd, 0x4c, 0xce, 0x56, 0x48, 0x2a, 0xca, 0x2f,
	0xcf, 0x53, 0x48, 0xcb, 0xaf, 0x50, 0xc8, 0x2a, 0xcd, 0x2d, 0x28, 0x56, 0xc8, 0x2f, 0x4b, 0x2d,
	0x52, 0x28, 0x01, 0x4a, 0xe7, 0x24, 0x56, 0x55, 0x2a, 0xa4, 0xe4, 0xa7, 0x03, 0x00, 0x61, 0x3c,
	0x0f, 0xfa,
}

var gzipPangram = []byte{
	0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0xff, 0x2b, 0xc9, 0x48, 0x55, 0x28, 0x2c,
	0xcd, 0x4c, 0xce, 0x56, 0x48, 0x2a, 0xca, 0x2f, 0xcf, 0x53, 0x48, 0xcb, 0xaf, 0x50, 0xc8, 0x2a,
	0xcd, 0x2d, 0x28, 0x56, 0xc8, 0x2f, 0x4b, 0x2d, 0x52, 0x28, 0x01, 0x4a, 0xe7, 0x24, 0x56, 0x55,
	0x2a, 0xa4, 0xe4, 0xa7, 0x03, 0x00, 0x14, 0x51, 0x0c, 0xce, 0x2b, 0x00, 0x00, 0x00,
}

// literalOnlyLZ4Block builds a minimal valid LZ4 block containing only a
// final literal sequence (no match), per the LZ4 block format's rule that
// the last sequence may omit the match part entirely.
func literalOnlyLZ4Block(data []byte) []byte {
	if len(data) >= 15 {
		panic("fixture helper only supports short literal runs")
	}
	block := []byte{byte(len(data)) << 4}

	return append(block, data...)
}

func TestGatewayNone(t *testing.T) {
	gw := NewGateway()
	out, err := gw.Decompress(None, pangram, len(pangram))
	require.NoError(t, err)
	require.Equal(t, pangram, out)
}

func TestGatewayNoneLengthMismatch(t *testing.T) {
	gw := NewGateway()
	_, err := gw.Decompress(None, pangram, len(pangram)+1)
	require.Error(t, err)
}

func TestGatewayZlib(t *testing.T) {
	gw := NewGateway()
	out, err := gw.Decompress(Zlib, zlibPangram, len(pangram))
	require.NoError(t, err)
	require.Equal(t, pangram, out)
}

func TestGatewayGzip(t *testing.T) {
	gw := NewGateway()
	out, err := gw.Decompress(Gzip, gzipPangram, len(pangram))
	require.NoError(t, err)
	require.Equal(t, pangram, out)
}

func TestGatewayLZ4(t *testing.T) {
	gw := NewGateway()
	block := literalOnlyLZ4Block([]byte("hello world!"))
	out, err := gw.Decompress(LZ4, block, len("hello world!"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello world!"), out)
}

func TestGatewayLZ4Dual(t *testing.T) {
	gw := NewGateway()
	stage2 := literalOnlyLZ4Block([]byte("dual stage"))
	stage1 := literalOnlyLZ4Block(stage2)
	out, err := gw.Decompress(LZ4Dual, stage1, len("dual stage"))
	require.NoError(t, err)
	require.Equal(t, []byte("dual stage"), out)
}

func TestGatewayUnknownTag(t *testing.T) {
	gw := NewGateway()
	_, err := gw.Decompress(Tag(99), nil, 0)
	require.Error(t, err)
}

func TestFastLZLiteralRun(t *testing.T) {
	gw := NewGateway()
	// A literal-run-only FastLZ opcode: top 3 bits clear, low 5 bits = len-1.
	payload := []byte("fastlz!!")
	op := byte(len(payload) - 1)
	stream := append([]byte{op}, payload...)

	out, err := gw.Decompress(FastLZ, stream, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestFastLZShortMatch(t *testing.T) {
	gw := NewGateway()
	// Literal "ab", then a short match copying 3 bytes from distance 2
	// (i.e. re-copy "ab" + 1 more from the growing output): "ababa".
	lit := []byte{1, 'a', 'b'} // op=1 -> len=2 literal
	// short match: op bits [001xxxxx] top=1 -> length = 1+2=3, dist bits low5=0, dist byte=1 -> dist=1+1=2
	match := []byte{0x20, 0x01}
	stream := append(lit, match...)

	out, err := gw.Decompress(FastLZ, stream, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("ababa"), out)
}

func TestGatewayShortDecode(t *testing.T) {
	gw := NewGateway()
	_, err := gw.Decompress(Zlib, zlibPangram, len(pangram)+10)
	require.ErrorIs(t, err, errs.ErrShortDecode)
}
