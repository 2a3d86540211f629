package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/tracewave/wfdecode/errs"
)

// gzipCodec wraps klauspost/compress's gzip reader. Used for the binary
// trace's gzip-compressed hierarchy block and the whole-file wrapper
// block, both of which are framed as a stream rather than a single
// fixed-size chunk.
type gzipCodec struct{}

func (gzipCodec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	r, err := gzip.NewReader(bytesReader(data))
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

// DecompressStream fully decompresses a gzip stream of unknown output size,
// used by the wrapper block to recursively frame the decompressed stream.
func DecompressStream(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytesReader(data))
	if err != nil {
		return nil, errs.ErrDecompressionFailure
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.ErrDecompressionFailure
	}

	return out, nil
}
