package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tracewave/wfdecode/compress"
	"github.com/tracewave/wfdecode/endian"
	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/internal/pool"
	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/token"
)

const vcTrailerSize = 24
const chainTrailerSize = 8

// vcTrailer is the 24-byte record sitting at the tail of every
// value-change block (§4.10): the uncompressed/compressed size of the
// time section and how many time entries it holds.
type vcTrailer struct {
	timeUncompressedSize uint64
	timeCompressedSize   uint64
	timeEntryCount       uint64
}

func readVCTrailer(b []byte) vcTrailer {
	return vcTrailer{
		timeUncompressedSize: binary.BigEndian.Uint64(b[0:8]),
		timeCompressedSize:   binary.BigEndian.Uint64(b[8:16]),
		timeEntryCount:       binary.BigEndian.Uint64(b[16:24]),
	}
}

// decodeTimeSection inflates the delta-encoded absolute time array. Time
// sections are always zlib: their sizes already sit in the trailer, so
// there's no need for the per-archive tag byte the geometry and
// hierarchy blocks carry.
//
// The returned slice comes from internal/pool's int64 slice pool, since
// its lifetime is exactly one value-change block decode; the caller must
// invoke the returned cleanup (typically via defer) once done reading it.
func decodeTimeSection(compressed []byte, tr vcTrailer) ([]int64, func(), error) {
	raw, err := gateway.Decompress(compress.Zlib, compressed, int(tr.timeUncompressedSize))
	if err != nil {
		return nil, nil, fmt.Errorf("trace: time section: %w", err)
	}

	r := bytes.NewReader(raw)
	times, cleanup := pool.GetInt64Slice(int(tr.timeEntryCount))

	var cum int64
	for i := range times {
		delta, err := binary.ReadUvarint(r)
		if err != nil {
			cleanup()

			return nil, nil, fmt.Errorf("%w: time entry %d: %v", errs.ErrUnexpectedEOF, i, err)
		}

		cum += int64(delta)
		times[i] = cum
	}

	return times, cleanup, nil
}

// frameHeader is the three-varint prefix at the very start of a
// value-change block (§4.10 step 5): the size of its own zlib-compressed
// payload (plus that payload's inflated size) and how many handles, from
// 1, the frame covers this block.
type frameHeader struct {
	uncompressedSize uint64
	compressedSize   uint64
	maxHandle        uint64
}

func readFrameHeader(r *bytes.Reader) (frameHeader, error) {
	uraw, err := binary.ReadUvarint(r)
	if err != nil {
		return frameHeader{}, fmt.Errorf("%w: frame-uncompressed-size: %v", errs.ErrUnexpectedEOF, err)
	}

	craw, err := binary.ReadUvarint(r)
	if err != nil {
		return frameHeader{}, fmt.Errorf("%w: frame-compressed-size: %v", errs.ErrUnexpectedEOF, err)
	}

	mh, err := binary.ReadUvarint(r)
	if err != nil {
		return frameHeader{}, fmt.Errorf("%w: frame-max-handle: %v", errs.ErrUnexpectedEOF, err)
	}

	return frameHeader{uncompressedSize: uraw, compressedSize: craw, maxHandle: mh}, nil
}

// vcDataHeader immediately follows the frame payload (§4.10 step 6): the
// highest handle the VC-data/chain table covers and the pack-type
// algorithm each individually-framed chunk declares itself with.
type vcDataHeader struct {
	maxHandle uint64
	packType  byte
}

func readVCDataHeader(r *bytes.Reader) (vcDataHeader, error) {
	mh, err := binary.ReadUvarint(r)
	if err != nil {
		return vcDataHeader{}, fmt.Errorf("%w: vc-max-handle: %v", errs.ErrUnexpectedEOF, err)
	}

	pt, err := r.ReadByte()
	if err != nil {
		return vcDataHeader{}, fmt.Errorf("%w: pack-type: %v", errs.ErrUnexpectedEOF, err)
	}

	if _, err := packTag(pt); err != nil {
		return vcDataHeader{}, err
	}

	return vcDataHeader{maxHandle: mh, packType: pt}, nil
}

// packTag maps a VC-data header pack-type byte to the compress.Tag that
// decompresses a chunk declaring it.
func packTag(pt byte) (compress.Tag, error) {
	switch pt {
	case 'Z':
		return compress.Zlib, nil
	case '4':
		return compress.LZ4, nil
	case 'F':
		return compress.FastLZ, nil
	default:
		return 0, fmt.Errorf("%w: pack-type %q", errs.ErrInvalidBlockType, pt)
	}
}

// writerLookup resolves a handle to its Writer, shared between this
// decoder's frame-initial and chunk dispatch sites.
type writerLookup func(handle uint64) (*record.Writer, bool)

// geometryLookup resolves a handle to its decoded storage shape.
type geometryLookup func(handle uint64) (GeometryEntry, bool)

// frameInitial is one handle's stored-but-not-yet-emitted frame value
// (§4.10: "store as the signal's initial state; do not emit it yet").
type frameInitial struct {
	isReal bool
	float  float64
	bits   []token.State
}

// decodeValueChangeBlock parses one value-change block's reverse-layout
// payload (§4.10) and emits every in-range sample to its Writer(s),
// applying cfg's time transform and window. timeXform converts a raw
// time-array entry into the effective timestamp Writers should record.
//
// A per-handle chunk that fails to decode is recoverable: it is logged
// through console and skipped, leaving the rest of the block's handles
// intact. A chunk that fails to *decompress* is treated as fatal and
// aborts the whole block, since a decompression shortfall means the
// block's own framing can no longer be trusted (§4.12).
func decodeValueChangeBlock(
	typ BlockType,
	payload []byte,
	geomOf geometryLookup,
	writerOf writerLookup,
	timeXform func(int64) int64,
	inWindow func(int64) bool,
	doubleEngine endian.EndianEngine,
	console record.ConsolePort,
) error {
	total := len(payload)
	if total < vcTrailerSize {
		return fmt.Errorf("%w: value-change block shorter than its trailer", errs.ErrInvalidHeaderSize)
	}

	tr := readVCTrailer(payload[total-vcTrailerSize:])
	tailEnd := total - vcTrailerSize

	timeStart := tailEnd - int(tr.timeCompressedSize)
	if timeStart < 0 {
		return fmt.Errorf("%w: time section size exceeds block", errs.ErrInvalidHeaderSize)
	}

	times, timesCleanup, err := decodeTimeSection(payload[timeStart:tailEnd], tr)
	if err != nil {
		return err
	}
	defer timesCleanup()

	if len(times) == 0 {
		return fmt.Errorf("%w: value-change block carries no timestamps", errs.ErrInvariantViolation)
	}

	hasChain := typ == BlockVCDynAlias || typ == BlockVCDynAlias2

	vcRegionEnd := timeStart

	var chainStart, chainEnd int
	if hasChain {
		if timeStart < chainTrailerSize {
			return fmt.Errorf("%w: value-change block shorter than its chain trailer", errs.ErrInvalidHeaderSize)
		}

		chainTrailerStart := timeStart - chainTrailerSize
		chainCompSize := binary.BigEndian.Uint64(payload[chainTrailerStart:timeStart])

		chainEnd = chainTrailerStart
		chainStart = chainEnd - int(chainCompSize)
		if chainStart < 0 {
			return fmt.Errorf("%w: chain section size exceeds block", errs.ErrInvalidHeaderSize)
		}

		vcRegionEnd = chainStart
	}

	r := bytes.NewReader(payload[:vcRegionEnd])

	fh, err := readFrameHeader(r)
	if err != nil {
		return err
	}

	frameHeaderLen := vcRegionEnd - r.Len()
	frameZlibEnd := frameHeaderLen + int(fh.compressedSize)
	if frameZlibEnd > vcRegionEnd {
		return fmt.Errorf("%w: frame payload size exceeds block", errs.ErrInvalidHeaderSize)
	}

	frameRaw, err := gateway.Decompress(compress.Zlib, payload[frameHeaderLen:frameZlibEnd], int(fh.uncompressedSize))
	if err != nil {
		return fmt.Errorf("trace: frame payload: %w", err)
	}

	vr := bytes.NewReader(payload[frameZlibEnd:vcRegionEnd])

	vch, err := readVCDataHeader(vr)
	if err != nil {
		return err
	}

	vcDataStart := frameZlibEnd + (vcRegionEnd - frameZlibEnd - vr.Len())
	vcData := payload[vcDataStart:vcRegionEnd]

	var entries []ChainEntry
	if hasChain {
		chainRaw := payload[chainStart:chainEnd]

		switch typ {
		case BlockVCDynAlias:
			entries, err = decodeChainDynAlias(chainRaw, int(vch.maxHandle), uint64(len(vcData)))
		case BlockVCDynAlias2:
			entries, err = decodeChainDynAlias2(chainRaw, int(vch.maxHandle), uint64(len(vcData)))
		}

		if err != nil {
			return err
		}
	}

	aliases := aliasTargets(entries)

	initials, err := decodeFrameInitials(frameRaw, fh.maxHandle, geomOf, doubleEngine)
	if err != nil {
		return err
	}

	blockStart := timeXform(times[0])
	for h := uint64(1); h <= fh.maxHandle; h++ {
		init, ok := initials[h]
		if !ok {
			continue
		}

		targets := append([]uint64{h}, aliases[h]...)

		if init.isReal {
			if err := emitFloat(blockStart, init.float, targets, writerOf, inWindow); err != nil {
				return err
			}

			continue
		}

		if err := emitLogic(blockStart, init.bits, targets, writerOf, inWindow); err != nil {
			return err
		}
	}

	if !hasChain {
		return decodePlainChunks(vcData, int(vch.maxHandle), geomOf, writerOf, times, timeXform, inWindow, doubleEngine, console)
	}

	return decodeChainedChunks(vcData, entries, vch.packType, aliases, geomOf, writerOf, times, timeXform, inWindow, doubleEngine, console)
}

// decodeFrameInitials walks the frame payload for handles 1..maxHandle,
// storing each live variable's initial value without emitting it yet
// (§4.10 step 5). Zero-width (text) handles have no stored initial: the
// frame section carries no length prefix for them.
func decodeFrameInitials(
	frameRaw []byte,
	maxHandle uint64,
	geomOf geometryLookup,
	doubleEngine endian.EndianEngine,
) (map[uint64]frameInitial, error) {
	fr := bytes.NewReader(frameRaw)
	out := make(map[uint64]frameInitial, maxHandle)

	for h := uint64(1); h <= maxHandle; h++ {
		g, ok := geomOf(h)
		if !ok {
			continue
		}

		switch {
		case g.IsReal:
			var buf [8]byte
			if _, err := io.ReadFull(fr, buf[:]); err != nil {
				return nil, fmt.Errorf("%w: frame initial for handle %d: %v", errs.ErrUnexpectedEOF, h, err)
			}

			out[h] = frameInitial{isReal: true, float: math.Float64frombits(doubleEngine.Uint64(buf[:]))}
		case g.Width == 0:
			// no initial stored for variable-length signals
		default:
			bits := make([]token.State, g.Width)

			for i := range bits {
				b, err := fr.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("%w: frame initial bit for handle %d: %v", errs.ErrUnexpectedEOF, h, err)
				}

				bits[i] = token.BinaryStateOf(b)
			}

			out[h] = frameInitial{bits: bits}
		}
	}

	return out, nil
}

// decodePlainChunks reads BlockVCPlain's own framing: one varint length
// followed by that many raw, uncompressed change-record bytes per
// handle, in ascending handle order with no chain table at all. Spec's
// offset/length chain-table vocabulary (§4.10) is chain-specific; the
// plain variant's inline length prefix is this decoder's own equivalent
// for the no-chain case.
func decodePlainChunks(
	vcData []byte,
	handleCount int,
	geomOf geometryLookup,
	writerOf writerLookup,
	times []int64,
	timeXform func(int64) int64,
	inWindow func(int64) bool,
	doubleEngine endian.EndianEngine,
	console record.ConsolePort,
) error {
	r := bytes.NewReader(vcData)

	for h := 1; h <= handleCount; h++ {
		handle := uint64(h)

		n, err := binary.ReadUvarint(r)
		if err != nil {
			return fmt.Errorf("%w: plain chunk length for handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
		}

		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return fmt.Errorf("%w: chunk bytes for handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
		}

		g, ok := geomOf(handle)
		if !ok {
			continue
		}

		if err := emitChunk(chunk, g, times, []uint64{handle}, writerOf, timeXform, inWindow, doubleEngine); err != nil {
			console.Warnf("trace: skipping handle %d: %v", handle, err)
		}
	}

	return nil
}

// decodeChainedChunks walks the chain table's entries, decompressing
// each handle's individually-framed chunk (§4.10 step "VC-chunk
// decoding") and emitting its change records. Alias entries are skipped
// outright: their samples are produced once, when their target handle's
// own chunk is decoded, and multiplexed out via targets.
func decodeChainedChunks(
	vcData []byte,
	entries []ChainEntry,
	packType byte,
	aliases map[uint64][]uint64,
	geomOf geometryLookup,
	writerOf writerLookup,
	times []int64,
	timeXform func(int64) int64,
	inWindow func(int64) bool,
	doubleEngine endian.EndianEngine,
	console record.ConsolePort,
) error {
	tag, err := packTag(packType)
	if err != nil {
		return err
	}

	for i, e := range entries {
		handle := uint64(i + 1)

		if e.IsAlias || !e.HasData() {
			continue
		}

		start := int(e.Offset) - 1
		if start < 0 || start+int(e.Length) > len(vcData) {
			return fmt.Errorf("%w: chunk range for handle %d exceeds VC data", errs.ErrInvalidHeaderSize, handle)
		}

		raw := vcData[start : start+int(e.Length)]

		cr := bytes.NewReader(raw)

		u, err := binary.ReadUvarint(cr)
		if err != nil {
			return fmt.Errorf("%w: chunk pack-size for handle %d: %v", errs.ErrUnexpectedEOF, handle, err)
		}

		rest := raw[len(raw)-cr.Len():]

		var chunk []byte
		if u == 0 {
			chunk = rest
		} else {
			chunk, err = gateway.Decompress(tag, rest, int(u))
			if err != nil {
				return fmt.Errorf("trace: handle %d chunk: %w", handle, err)
			}
		}

		g, ok := geomOf(handle)
		if !ok {
			continue
		}

		targets := append([]uint64{handle}, aliases[handle]...)

		if err := emitChunk(chunk, g, times, targets, writerOf, timeXform, inWindow, doubleEngine); err != nil {
			console.Warnf("trace: skipping handle %d: %v", handle, err)
		}
	}

	return nil
}

// extendedStates maps Case A's 3-bit extended-state index (the nibble's
// upper bits once the fixed LSB=1 tag is removed) to a token.State. The
// spec pins down the shift-count/tag structure but not this literal
// index-to-state table, so this is one self-consistent choice among the
// states 2-/4-state mode can't already reach via State0/State1.
var extendedStates = [8]token.State{
	token.StateX,
	token.StateZ,
	token.StateH,
	token.StateL,
	token.StateU,
	token.StateW,
	token.StateDash,
	token.StateSmallH,
}

// emitChunk decodes a single handle's change-record stream (Case A/B/C/D
// per §4.10) and writes each sample to every target handle's Writer
// (more than one target when the source handle has aliases).
func emitChunk(
	chunk []byte,
	g GeometryEntry,
	times []int64,
	targets []uint64,
	writerOf writerLookup,
	timeXform func(int64) int64,
	inWindow func(int64) bool,
	doubleEngine endian.EndianEngine,
) error {
	r := bytes.NewReader(chunk)

	var cumIdx uint64

	for r.Len() > 0 {
		vli, err := binary.ReadUvarint(r)
		if err != nil {
			return fmt.Errorf("%w: record vli: %v", errs.ErrUnexpectedEOF, err)
		}

		switch {
		case g.IsReal:
			cumIdx += vli >> 1

			if int(cumIdx) >= len(times) {
				return fmt.Errorf("%w: time index %d out of range", errs.ErrInvariantViolation, cumIdx)
			}

			t := timeXform(times[cumIdx])

			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return fmt.Errorf("%w: real value: %v", errs.ErrUnexpectedEOF, err)
			}

			v := math.Float64frombits(doubleEngine.Uint64(buf[:]))

			if err := emitFloat(t, v, targets, writerOf, inWindow); err != nil {
				return err
			}
		case g.Width == 0:
			cumIdx += vli >> 1

			if int(cumIdx) >= len(times) {
				return fmt.Errorf("%w: time index %d out of range", errs.ErrInvariantViolation, cumIdx)
			}

			t := timeXform(times[cumIdx])

			n, err := binary.ReadUvarint(r)
			if err != nil {
				return fmt.Errorf("%w: text payload length: %v", errs.ErrUnexpectedEOF, err)
			}

			payload := make([]byte, n)
			if _, err := io.ReadFull(r, payload); err != nil {
				return fmt.Errorf("%w: text payload: %v", errs.ErrUnexpectedEOF, err)
			}

			if inWindow(t) {
				for _, h := range targets {
					w, ok := writerOf(h)
					if !ok {
						continue
					}

					var werr error
					switch w.Kind {
					case record.WriterEvent:
						werr = w.WriteEvent(t)
					default:
						werr = w.WriteText(t, string(payload))
					}

					if werr != nil {
						return fmt.Errorf("trace: %w", werr)
					}
				}
			}
		case g.Width == 1:
			shift := uint(2)
			if vli&1 == 1 {
				shift = 4
			}

			cumIdx += vli >> shift

			if int(cumIdx) >= len(times) {
				return fmt.Errorf("%w: time index %d out of range", errs.ErrInvariantViolation, cumIdx)
			}

			t := timeXform(times[cumIdx])

			var st token.State
			if shift == 2 {
				st = token.State((vli >> 1) & 1)
			} else {
				st = extendedStates[(vli>>1)&0x7]
			}

			if err := emitLogic(t, []token.State{st}, targets, writerOf, inWindow); err != nil {
				return err
			}
		default:
			cumIdx += vli >> 1

			if int(cumIdx) >= len(times) {
				return fmt.Errorf("%w: time index %d out of range", errs.ErrInvariantViolation, cumIdx)
			}

			t := timeXform(times[cumIdx])

			bits := make([]token.State, g.Width)

			if vli&1 == 0 {
				nbytes := (g.Width + 7) / 8

				packed := make([]byte, nbytes)
				if _, err := io.ReadFull(r, packed); err != nil {
					return fmt.Errorf("%w: packed vector value: %v", errs.ErrUnexpectedEOF, err)
				}

				for i := range bits {
					byteIdx := i / 8
					bitIdx := uint(i % 8)

					if packed[byteIdx]>>bitIdx&1 == 1 {
						bits[i] = token.State1
					} else {
						bits[i] = token.State0
					}
				}
			} else {
				for i := range bits {
					b, err := r.ReadByte()
					if err != nil {
						return fmt.Errorf("%w: vector value: %v", errs.ErrUnexpectedEOF, err)
					}

					bits[i] = token.BinaryStateOf(b)
				}
			}

			if err := emitLogic(t, bits, targets, writerOf, inWindow); err != nil {
				return err
			}
		}
	}

	return nil
}

// emitLogic writes a whole-vector (or scalar) logic sample to every
// target handle's Writer, routing a single-bit sample through
// WriteLogicBit when the target is a vector-grouped writer.
func emitLogic(t int64, bits []token.State, targets []uint64, writerOf writerLookup, inWindow func(int64) bool) error {
	if !inWindow(t) {
		return nil
	}

	level := 2
	xtag := false

	for _, b := range bits {
		if l := b.Level(); l > level {
			level = l
		}
		if b.IsX() {
			xtag = true
		}
	}

	for _, h := range targets {
		w, ok := writerOf(h)
		if !ok {
			continue
		}

		if len(bits) == 1 {
			if bi, grouped := w.BitIndexForHandle(h); grouped {
				if err := w.WriteLogicBit(bi, t, bits[0]); err != nil {
					return fmt.Errorf("trace: %w", err)
				}

				continue
			}
		}

		if err := w.WriteLogic(t, bits, level, xtag); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
	}

	return nil
}

// emitFloat writes a real-valued sample to every target handle's Writer.
func emitFloat(t int64, v float64, targets []uint64, writerOf writerLookup, inWindow func(int64) bool) error {
	if !inWindow(t) {
		return nil
	}

	for _, h := range targets {
		if w, ok := writerOf(h); ok {
			if err := w.WriteFloat(t, v); err != nil {
				return fmt.Errorf("trace: %w", err)
			}
		}
	}

	return nil
}
