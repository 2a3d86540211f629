package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tracewave/wfdecode/compress"
	"github.com/tracewave/wfdecode/errs"
)

// geometryRealMarker flags a handle as carrying real (double) samples;
// geometryZeroWidthLogic flags a zero-width logic handle (an event-like
// signal declared with $var but no bit width). Any other varint value is
// the logic signal's bit width.
const (
	geometryRealMarker     = 0
	geometryZeroWidthLogic = 0xFFFFFFFF
)

var gateway = compress.NewGateway()

// GeometryEntry describes one handle's storage shape, decoded from the
// geometry block in declaration order (handle 1..N).
type GeometryEntry struct {
	IsReal bool
	Width  int
}

// decodeGeometry reads the geometry block's wrapped, varint-per-handle
// payload (§4.9): a 1-byte compress.Tag, an 8-byte uncompressed-size
// prefix, then the compressed LEB128 varint stream, one entry per handle
// in ascending order. The tag is free-standing per archive, so any of the
// gateway's six codecs may appear here.
func decodeGeometry(payload []byte, handleCount int) ([]GeometryEntry, error) {
	raw, err := decodeWrappedSection(payload)
	if err != nil {
		return nil, fmt.Errorf("trace: geometry: %w", err)
	}

	entries := make([]GeometryEntry, 0, handleCount)
	r := bytes.NewReader(raw)

	for i := 0; i < handleCount; i++ {
		v, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: geometry entry %d: %v", errs.ErrUnexpectedEOF, i+1, err)
		}

		switch v {
		case geometryRealMarker:
			entries = append(entries, GeometryEntry{IsReal: true})
		case geometryZeroWidthLogic:
			entries = append(entries, GeometryEntry{Width: 0})
		default:
			entries = append(entries, GeometryEntry{Width: int(v)})
		}
	}

	return entries, nil
}

// decodeWrappedSection reads a [1-byte compress.Tag][8-byte BE
// uncompressed size][compressed bytes] section, the geometry block's
// wrapping convention.
func decodeWrappedSection(payload []byte) ([]byte, error) {
	if len(payload) < 9 {
		return nil, fmt.Errorf("%w: section too short for tag+size prefix", errs.ErrInvalidHeaderSize)
	}

	tag := compress.Tag(payload[0])
	size := binary.BigEndian.Uint64(payload[1:9])

	return gateway.Decompress(tag, payload[9:], int(size))
}
