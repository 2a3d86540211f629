package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/varint"
)

// ChainEntry describes one handle's data placement within a value-change
// block's VC-data region (§4.10): a byte range [Offset, Offset+Length)
// relative to VC-data start, an alias pointing at another handle's chunk
// (Length < 0, target handle = -Length), or no data this block at all
// (Offset == 0, Length == 0, !IsAlias).
type ChainEntry struct {
	Offset  uint64
	Length  int64
	IsAlias bool
}

// AliasTarget returns the 1-based handle this entry aliases. Only valid
// when IsAlias is true.
func (e ChainEntry) AliasTarget() uint64 {
	return uint64(-e.Length)
}

// HasData reports whether this entry names a real, non-alias chunk.
func (e ChainEntry) HasData() bool {
	return !e.IsAlias && e.Length > 0
}

// closeChain finalizes the last offset-opened handle's length against the
// end of the VC-data region: both chain variants leave that one entry's
// length implicit, closed only by the region boundary rather than a
// following chain event ("the last non-alias handle's length is closed
// against the end of the VC data region", §4.10). Offsets are anchored
// one byte ahead of the VC-data slice (the chunk-addressing "-1"
// correction applied uniformly at seek time), so the virtual offset one
// past the region's end is vcDataLen+1.
func closeChain(entries []ChainEntry, lastOpen int, vcDataLen uint64) {
	if lastOpen <= 0 {
		return
	}

	e := &entries[lastOpen-1]
	e.Length = int64(vcDataLen) + 1 - int64(e.Offset)
}

// decodeChainDynAlias reads the DYN_ALIAS chain table variant (§4.10): a
// single stream of unsigned varints walked against a 1-based handle
// cursor, not one varint per handle. val == 0 marks the current handle as
// an alias (the following varint is the absolute target handle); val odd
// advances the running offset accumulator by val>>1, opens the current
// handle's Offset there, and closes whichever earlier handle last opened
// an Offset; val even and non-zero skips val>>1 handles, leaving each at
// Offset=0, Length=0.
func decodeChainDynAlias(raw []byte, handleCount int, vcDataLen uint64) ([]ChainEntry, error) {
	r := bytes.NewReader(raw)
	entries := make([]ChainEntry, handleCount)

	offsetAcc := uint64(0)
	lastOpen := 0

	for handle := 1; handle <= handleCount; {
		val, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: chain event at handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
		}

		switch {
		case val == 0:
			target, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, fmt.Errorf("%w: chain alias target for handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
			}

			entries[handle-1] = ChainEntry{IsAlias: true, Length: -int64(target)}
			handle++
		case val%2 == 1:
			offsetAcc += val >> 1
			entries[handle-1].Offset = offsetAcc

			if lastOpen > 0 {
				prev := &entries[lastOpen-1]
				prev.Length = int64(offsetAcc) - int64(prev.Offset)
			}

			lastOpen = handle
			handle++
		default:
			skip := int(val >> 1)
			for i := 0; i < skip && handle <= handleCount; i++ {
				handle++
			}
		}
	}

	closeChain(entries, lastOpen, vcDataLen)

	return entries, nil
}

// decodeChainDynAlias2 reads the DYN_ALIAS2 chain table variant (§4.10):
// a stream of unsigned varints whose own LSB is a tag bit, orthogonal to
// the sign of the zigzag-decoded remainder. Tag clear skips body handles
// (body = val>>1, the same skip-run shape as DYN_ALIAS); tag set
// zigzag-decodes the body into a signed value sv: sv > 0 is an offset
// delta exactly like DYN_ALIAS's odd case, sv < 0 opens a fresh alias
// (remembered for reuse), and sv == 0 repeats the previous alias.
func decodeChainDynAlias2(raw []byte, handleCount int, vcDataLen uint64) ([]ChainEntry, error) {
	r := bytes.NewReader(raw)
	entries := make([]ChainEntry, handleCount)

	offsetAcc := uint64(0)
	lastOpen := 0
	var prevAlias int64

	for handle := 1; handle <= handleCount; {
		val, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("%w: chain2 event at handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
		}

		if val&1 == 0 {
			skip := int(val >> 1)
			for i := 0; i < skip && handle <= handleCount; i++ {
				handle++
			}

			continue
		}

		sv := varint.ZigZagDecode(val >> 1)

		switch {
		case sv > 0:
			offsetAcc += uint64(sv)
			entries[handle-1].Offset = offsetAcc

			if lastOpen > 0 {
				prev := &entries[lastOpen-1]
				prev.Length = int64(offsetAcc) - int64(prev.Offset)
			}

			lastOpen = handle
		case sv < 0:
			entries[handle-1] = ChainEntry{IsAlias: true, Length: sv}
			prevAlias = sv
		default:
			entries[handle-1] = ChainEntry{IsAlias: true, Length: prevAlias}
		}

		handle++
	}

	closeChain(entries, lastOpen, vcDataLen)

	return entries, nil
}

// aliasTargets inverts the chain table into target-handle -> alias-handle
// lists, so a decoded target chunk can be replicated to every handle that
// aliases it.
func aliasTargets(entries []ChainEntry) map[uint64][]uint64 {
	out := make(map[uint64][]uint64)

	for i, e := range entries {
		if e.IsAlias && e.Length != 0 {
			handle := uint64(i + 1)
			out[e.AliasTarget()] = append(out[e.AliasTarget()], handle)
		}
	}

	return out
}
