// Package varint implements the little-endian 7-bit-payload integer
// encodings used throughout the binary trace format: an unsigned varint
// and a signed (sign-extended) varint, plus a helper that reports how many
// bytes a value would take without performing a full decode.
//
// Grounded on the teacher's own varint usage (encoding/ts_delta.go,
// encoding/ts_raw.go), which drives binary.PutUvarint/zigzag by hand for
// the encode side; the decode side here is hand-written because the
// binary trace decoder works off byte slices directly rather than an
// io.ByteReader, the same way the teacher's encoders avoid a io.Writer
// indirection for its buffers.
package varint

import "github.com/tracewave/wfdecode/errs"

// MaxBytes is the maximum number of bytes a varint may occupy before the
// codec considers it malformed (no terminator byte found).
const MaxBytes = 10

// ReadUvarint decodes an unsigned varint from the head of data.
//
// Returns the decoded value, the number of bytes consumed, and an error if
// no terminating byte (high bit clear) is found within MaxBytes bytes or
// data is exhausted first.
func ReadUvarint(data []byte) (uint64, int, error) {
	var result uint64
	var shift uint

	for i := 0; i < MaxBytes; i++ {
		if i >= len(data) {
			return 0, i, errs.ErrUnexpectedEOF
		}

		b := data[i]
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}

	return 0, 0, errs.ErrInvalidNumeric
}

// ReadVarint decodes a signed varint using the wire form of ReadUvarint
// with sign-extension applied when the shift did not consume the full 64
// bits and the 0x40 bit of the final byte is set.
func ReadVarint(data []byte) (int64, int, error) {
	var result int64
	var shift uint

	for i := 0; i < MaxBytes; i++ {
		if i >= len(data) {
			return 0, i, errs.ErrUnexpectedEOF
		}

		b := data[i]
		result |= int64(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}

			return result, i + 1, nil
		}
	}

	return 0, 0, errs.ErrInvalidNumeric
}

// SizeUvarint returns the number of bytes an unsigned varint encoding of v
// would occupy, without performing a decode. Used to compute section
// layout offsets from already-known values.
func SizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// AppendUvarint appends the varint encoding of v to dst and returns the
// extended slice. Used by tests to build fixtures and by callers that
// need to round-trip a decoded value.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendVarint appends the sign-extending varint encoding of v to dst.
func AppendVarint(dst []byte, v int64) []byte {
	for {
		b := byte(v) & 0x7f
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// ZigZagEncode maps a signed value to an unsigned one so small-magnitude
// negatives also encode compactly. Provided for callers (the binary
// decoder's DYN_ALIAS chain variant) that need zigzag rather than
// sign-extended semantics.
func ZigZagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// ZigZagDecode reverses ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
