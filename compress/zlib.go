package compress

import (
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/tracewave/wfdecode/errs"
)

// zlibCodec wraps klauspost/compress's zlib reader, a drop-in optimized
// replacement for compress/zlib also present in Sneller's dependency
// footprint. Used for the text/binary "zlib" tag and for the binary
// trace's frame/time/geometry sections.
type zlibCodec struct{}

func (zlibCodec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	r, err := zlib.NewReader(bytesReader(data))
	if err != nil {
		return nil, false, errs.ErrDecompressionFailure
	}
	defer r.Close()

	out := make([]byte, wantSize)
	n, err := io.ReadFull(r, out)
	switch {
	case err == nil:
		return out, false, nil
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		return out[:n], true, errs.ErrShortDecode
	default:
		return nil, false, errs.ErrDecompressionFailure
	}
}
