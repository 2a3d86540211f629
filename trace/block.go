// Package trace implements the binary trace decoder (Core B): a block
// framer, header/hierarchy/geometry decoder, and a reverse-layout value-
// change decoder with dynamic-alias chain resolution. Every block's
// offsets and sizes are validated before its compressed payload is ever
// touched, the same discipline §4.10's reverse-layout parse requires.
package trace

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tracewave/wfdecode/errs"
)

// BlockType tags the typed blocks a trace file is built from (§4.8).
type BlockType uint8

const (
	BlockHeader BlockType = iota
	BlockVCPlain
	BlockVCDynAlias
	BlockVCDynAlias2
	BlockBlackout
	BlockGeometry
	BlockHierarchyPlain
	BlockHierarchyGzip
	BlockHierarchyLZ4
	BlockHierarchyLZ4Duo
	BlockWrapperGzip
	BlockSkip
)

func (t BlockType) String() string {
	switch t {
	case BlockHeader:
		return "header"
	case BlockVCPlain:
		return "value-change(plain)"
	case BlockVCDynAlias:
		return "value-change(dyn-alias)"
	case BlockVCDynAlias2:
		return "value-change(dyn-alias2)"
	case BlockBlackout:
		return "blackout"
	case BlockGeometry:
		return "geometry"
	case BlockHierarchyPlain:
		return "hierarchy(plain)"
	case BlockHierarchyGzip:
		return "hierarchy(gzip)"
	case BlockHierarchyLZ4:
		return "hierarchy(lz4)"
	case BlockHierarchyLZ4Duo:
		return "hierarchy(lz4-duo)"
	case BlockWrapperGzip:
		return "wrapper(gzip)"
	case BlockSkip:
		return "skip"
	default:
		return "unknown"
	}
}

func (t BlockType) isValueChange() bool {
	return t == BlockVCPlain || t == BlockVCDynAlias || t == BlockVCDynAlias2
}

// readBlockHeader reads the one-byte type and eight-byte big-endian
// length (the length value counts itself, so the payload that follows is
// length-8 bytes) and returns the block's type and payload length.
func readBlockHeader(r io.Reader) (BlockType, int64, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return 0, 0, io.EOF
		}

		return 0, 0, fmt.Errorf("%w: block header: %v", errs.ErrUnexpectedEOF, err)
	}

	typ := BlockType(hdr[0])
	length := binary.BigEndian.Uint64(hdr[1:9])
	if length < 8 {
		return 0, 0, fmt.Errorf("%w: block length %d smaller than its own field", errs.ErrInvalidHeaderSize, length)
	}

	return typ, int64(length) - 8, nil
}
