package compress

import (
	"github.com/pierrec/lz4/v4"

	"github.com/tracewave/wfdecode/errs"
)

// lz4Codec decompresses a single LZ4 block into exactly wantSize bytes.
//
// Grounded on the teacher's compress/lz4.go, which pools a lz4.Compressor
// for the symmetric encode path; the decode side here uses the stateless
// lz4.UncompressBlock the same way the teacher's Decompress method does,
// since the block API keeps no state worth pooling across decodes.
type lz4Codec struct{}

func (lz4Codec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	dst := make([]byte, wantSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, false, errs.ErrDecompressionFailure
	}
	if n < wantSize {
		return dst[:n], true, errs.ErrShortDecode
	}

	return dst, false, nil
}

// lz4DualCodec implements the dual-stage LZ4 tag (§4.3): decompress into
// an intermediate buffer sized at >= 4x the input, then decompress again
// into the declared output size.
type lz4DualCodec struct{}

func (lz4DualCodec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	interSize := len(data) * 4
	if interSize < 64 {
		interSize = 64
	}

	var stage1 []byte
	var n int
	var err error
	for attempts := 0; attempts < 6; attempts++ {
		stage1 = make([]byte, interSize)
		n, err = lz4.UncompressBlock(data, stage1)
		if err == nil {
			break
		}
		if err == lz4.ErrInvalidSourceShortBuffer {
			interSize *= 2

			continue
		}

		return nil, false, errs.ErrDecompressionFailure
	}
	if err != nil {
		return nil, false, errs.ErrDecompressionFailure
	}

	return (lz4Codec{}).Decompress(stage1[:n], wantSize)
}
