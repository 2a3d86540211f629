package compress

import "github.com/tracewave/wfdecode/errs"

// codec is the uniform decompression contract: given compressed bytes and
// the declared uncompressed size, produce an owned buffer of exactly that
// size, or a partial buffer plus errs.ErrShortDecode when the algorithm
// cannot request more input.
//
// Grounded on Sneller's compr.Decompressor ("Decompress should error out
// if dst is not large enough"), generalized here to return the partial
// result instead of only erroring, per the gateway's §4.3 "short decode"
// policy.
type codec interface {
	Decompress(data []byte, wantSize int) (out []byte, short bool, err error)
}

var codecs = map[Tag]codec{
	None:    noneCodec{},
	Zlib:    zlibCodec{},
	Gzip:    gzipCodec{},
	LZ4:     lz4Codec{},
	LZ4Dual: lz4DualCodec{},
	FastLZ:  fastlzCodec{},
}

// Gateway is the decompression gateway (C3): a stateless dispatcher over
// the registered codecs.
type Gateway struct{}

// NewGateway returns a ready-to-use decompression gateway.
func NewGateway() Gateway { return Gateway{} }

// Decompress produces an uncompressed buffer of exactly wantSize bytes for
// the given algorithm tag. If fewer bytes are produced and the algorithm
// cannot request more input, the partial buffer is returned alongside
// errs.ErrShortDecode (via errors.Is) so the caller can decide whether a
// partial result is acceptable.
func (Gateway) Decompress(tag Tag, data []byte, wantSize int) ([]byte, error) {
	c, ok := codecs[tag]
	if !ok {
		return nil, errs.ErrUnsupportedFeature
	}

	out, short, err := c.Decompress(data, wantSize)
	if short {
		return out, errs.ErrShortDecode
	}

	return out, err
}
