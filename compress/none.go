package compress

import "github.com/tracewave/wfdecode/errs"

// noneCodec implements the "no compression" tag: the payload must already
// be exactly the declared size.
type noneCodec struct{}

func (noneCodec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	if len(data) != wantSize {
		return nil, false, errs.ErrDecompressionFailure
	}

	out := make([]byte, wantSize)
	copy(out, data)

	return out, false, nil
}
