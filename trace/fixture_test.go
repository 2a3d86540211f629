package trace

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"math"

	"github.com/tracewave/wfdecode/compress"
	"github.com/tracewave/wfdecode/token"
	"github.com/tracewave/wfdecode/varint"
)

// fixtureBuilder assembles a binary trace byte stream block by block, the
// way a real writer would, so decoder tests exercise the same framing the
// production path parses.
type fixtureBuilder struct {
	buf bytes.Buffer
}

func (f *fixtureBuilder) block(typ BlockType, payload []byte) {
	var hdr [9]byte
	hdr[0] = byte(typ)
	binary.BigEndian.PutUint64(hdr[1:], uint64(len(payload)+8))

	f.buf.Write(hdr[:])
	f.buf.Write(payload)
}

func (f *fixtureBuilder) bytes() []byte { return f.buf.Bytes() }

func mustZlib(raw []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(raw)
	w.Close()

	return buf.Bytes()
}

func mustGzip(raw []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Write(raw)
	w.Close()

	return buf.Bytes()
}

func uv(v uint64) []byte {
	return binary.AppendUvarint(nil, v)
}

func be64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)

	return b[:]
}

// headerPayload builds a §4.9 fixed-layout header block payload. Doubles
// are written big-endian (matching math.E verbatim), so decoders built
// from this fixture always resolve Header.DoubleEngine to the big-endian
// engine.
func headerPayload(startTime, endTime int64, maxHandle, scopeCount, varCount uint64, timescale int8, timeZero int64) []byte {
	var b bytes.Buffer

	write64 := func(v int64) { b.Write(be64(uint64(v))) }

	write64(startTime)
	write64(endTime)
	b.Write(be64(math.Float64bits(math.E)))
	write64(0) // memory hint
	write64(int64(scopeCount))
	write64(int64(varCount))
	write64(int64(maxHandle))
	write64(0) // section count

	b.WriteByte(byte(timescale))

	var version [128]byte
	copy(version[:], "wfdecode-fixture")
	b.Write(version[:])

	var date [119]byte
	copy(date[:], "2026-07-31")
	b.Write(date[:])

	b.WriteByte(0) // file type

	write64(timeZero)

	return b.Bytes()
}

// wrappedSection builds the geometry block's free-standing [tag][size][data]
// convention.
func wrappedSection(tag byte, raw []byte, compressed []byte) []byte {
	var b bytes.Buffer

	b.WriteByte(tag)
	b.Write(be64(uint64(len(raw))))
	b.Write(compressed)

	return b.Bytes()
}

// geometryPayload encodes one uvarint per handle (in ascending order) and
// wraps it uncompressed (compress.None), the simplest archive choice.
func geometryPayload(entries []uint64) []byte {
	var raw bytes.Buffer
	for _, e := range entries {
		raw.Write(uv(e))
	}

	return wrappedSection(byte(compress.None), raw.Bytes(), raw.Bytes())
}

// hierarchyEntry helpers build one tagged hierarchy entry each.
func scopeOpenEntry(kind, name string) []byte {
	var b bytes.Buffer
	b.WriteByte(tagScopeOpen)
	b.WriteString(kind)
	b.WriteByte(0)
	b.WriteString(name)
	b.WriteByte(0)

	return b.Bytes()
}

func scopeCloseEntry() []byte { return []byte{tagScopeClose} }

func varEntry(tag byte, handle uint64, name string) []byte {
	var b bytes.Buffer
	b.WriteByte(tag)
	b.Write(uv(handle))
	b.Write(uv(uint64(len(name))))
	b.WriteString(name)

	return b.Bytes()
}

// hierarchyPlainPayload wraps a concatenation of tagged entries using
// BlockHierarchyPlain's convention: an 8-byte uncompressed-size prefix
// followed by the exact-length payload (compress.None).
func hierarchyPlainPayload(entries ...[]byte) []byte {
	var raw bytes.Buffer
	for _, e := range entries {
		raw.Write(e)
	}

	var b bytes.Buffer
	b.Write(be64(uint64(raw.Len())))
	b.Write(raw.Bytes())

	return b.Bytes()
}

// vcPlainFrame packs one handle's chunk per the BlockVCPlain convention:
// an inline uvarint length prefix directly ahead of each handle's chunk
// bytes, in ascending handle order.
func vcPlainFrame(chunks [][]byte) []byte {
	var raw bytes.Buffer
	for _, c := range chunks {
		raw.Write(uv(uint64(len(c))))
		raw.Write(c)
	}

	return raw.Bytes()
}

// packChunk frames one chain-addressed handle's chunk bytes with the
// leading pack-size varint every VC-data chunk carries: 0 means the
// remainder is already uncompressed.
func packChunk(payload []byte) []byte {
	var b bytes.Buffer
	b.Write(uv(0))
	b.Write(payload)

	return b.Bytes()
}

func beFloat(v float64) []byte {
	return be64(math.Float64bits(v))
}

// extendedStateIndex finds a token.State's position in extendedStates, the
// inverse of emitChunk's Case A extended-state lookup.
func extendedStateIndex(st token.State) uint64 {
	for i, s := range extendedStates {
		if s == st {
			return uint64(i)
		}
	}

	panic("fixture: state not present in extendedStates")
}

// vliScalar packs one Case A (width==1) change record: a 2-state bit
// carried in the mode-tag/state bits alongside the time-index delta.
func vliScalar(delta uint64, st token.State) []byte {
	if st == token.State1 {
		return uv(delta<<2 | 1<<1)
	}

	return uv(delta << 2)
}

// vliScalarExt packs one Case A extended (16-state) change record.
func vliScalarExt(delta uint64, st token.State) []byte {
	idx := extendedStateIndex(st)

	return uv(delta<<4 | idx<<1 | 1)
}

// vliText packs one Case B (width==0) text change record: a time-index
// delta followed by a length-prefixed payload.
func vliText(delta uint64, text string) []byte {
	var b bytes.Buffer
	b.Write(uv(delta << 1))
	b.Write(uv(uint64(len(text))))
	b.WriteString(text)

	return b.Bytes()
}

// vliReal packs one Case D change record: a time-index delta followed by
// an 8-byte big-endian IEEE-754 double.
func vliReal(delta uint64, v float64) []byte {
	var b bytes.Buffer
	b.Write(uv(delta << 1))
	b.Write(beFloat(v))

	return b.Bytes()
}

// vliVectorPacked packs one Case C change record with the bit-packed
// payload form (tag bit clear): one bit per value, 0/1 only.
func vliVectorPacked(delta uint64, bits []int) []byte {
	var b bytes.Buffer
	b.Write(uv(delta << 1))

	packed := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v != 0 {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	b.Write(packed)

	return b.Bytes()
}

// vliVectorChars packs one Case C change record with the one-state-byte-
// per-bit payload form (tag bit set).
func vliVectorChars(delta uint64, chars string) []byte {
	var b bytes.Buffer
	b.Write(uv(delta<<1 | 1))
	b.WriteString(chars)

	return b.Bytes()
}

// chainOffset packs one DYN_ALIAS chain-table offset event: an odd varint
// whose value>>1 is added to the running offset accumulator.
func chainOffset(delta uint64) []byte { return uv(delta<<1 | 1) }

// chainAlias packs one DYN_ALIAS chain-table alias event: a 0 tag varint
// followed by the absolute target handle.
func chainAlias(target uint64) []byte {
	var b bytes.Buffer
	b.Write(uv(0))
	b.Write(uv(target))

	return b.Bytes()
}

// chainSkip packs one DYN_ALIAS chain-table skip-run event: n must be >=1
// so the even tag never collides with the 0 alias marker.
func chainSkip(n int) []byte { return uv(uint64(n) << 1) }

// chain2Offset packs one DYN_ALIAS2 chain-table event carrying zigzag-
// encoded signed value sv: positive is an offset-delta, negative opens a
// new alias (Length=sv), zero reuses the previous alias.
func chain2Offset(sv int64) []byte {
	return uv(varint.ZigZagEncode(sv)<<1 | 1)
}

// chain2Skip packs one DYN_ALIAS2 chain-table skip-run event (tag clear).
func chain2Skip(n int) []byte { return uv(uint64(n) << 1) }

// frameInitialReal packs a real handle's frame-section initial value.
func frameInitialReal(v float64) []byte { return beFloat(v) }

// frameInitialLogic packs a logic handle's frame-section initial value,
// one state byte per bit.
func frameInitialLogic(states ...token.State) []byte {
	b := make([]byte, len(states))
	for i, st := range states {
		b[i] = stateByte(st)
	}

	return b
}

func stateByte(st token.State) byte {
	switch st {
	case token.State0:
		return '0'
	case token.State1:
		return '1'
	case token.StateZ:
		return 'z'
	default:
		return 'x'
	}
}

// timeSectionRaw delta-encodes an ascending absolute-time array.
func timeSectionRaw(times []int64) []byte {
	var b bytes.Buffer

	var prev int64
	for i, t := range times {
		delta := t - prev
		if i == 0 {
			delta = t
		}

		b.Write(uv(uint64(delta)))
		prev = t
	}

	return b.Bytes()
}

// vcBlockPayload assembles a full value-change block payload in §4.10's
// reverse-parsed order: frame header + zlib frame payload, VC-data header
// + VC-data, an optional raw chain section + its 8-byte trailer, the zlib
// time section, and the fixed 24-byte trailer.
func vcBlockPayload(frameMaxHandle uint64, frameRaw []byte, vcMaxHandle uint64, packType byte, vcData []byte, chainRaw []byte, times []int64) []byte {
	var b bytes.Buffer

	frameZlib := mustZlib(frameRaw)

	b.Write(uv(uint64(len(frameRaw))))
	b.Write(uv(uint64(len(frameZlib))))
	b.Write(uv(frameMaxHandle))
	b.Write(frameZlib)

	b.Write(uv(vcMaxHandle))
	b.WriteByte(packType)
	b.Write(vcData)

	if chainRaw != nil {
		b.Write(chainRaw)
		b.Write(be64(uint64(len(chainRaw))))
	}

	timeRaw := timeSectionRaw(times)
	timeZlib := mustZlib(timeRaw)
	b.Write(timeZlib)

	b.Write(be64(uint64(len(timeRaw))))
	b.Write(be64(uint64(len(timeZlib))))
	b.Write(be64(uint64(len(times))))

	return b.Bytes()
}
