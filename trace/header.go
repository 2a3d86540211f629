package trace

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tracewave/wfdecode/endian"
	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/record"
)

// headerPayloadSize is the fixed size of the header block's payload per
// §4.9: 8*8 fixed integer fields + 1 timescale byte + 128 version bytes +
// 119 date bytes + 1 file-type byte + 8 time-zero bytes.
const headerPayloadSize = 8*8 + 1 + 128 + 119 + 1 + 8

// Header is the decoded fixed-layout binary header.
type Header struct {
	StartTime    int64
	EndTime      int64
	MemoryHint   uint64
	ScopeCount   uint64
	VarCount     uint64
	MaxHandle    uint64
	SectionCount uint64
	Timescale    int8
	Version      string
	Date         string
	FileType     uint8
	TimeZero     int64

	// DoubleEngine is the byte order real (Case D) values in value-change
	// chunks were written with, resolved from the header's endian-test
	// double rather than assumed.
	DoubleEngine endian.EndianEngine

	EffectiveStart int64
	EffectiveEnd   int64
}

func parseHeader(b []byte) (*Header, error) {
	if len(b) != headerPayloadSize {
		return nil, fmt.Errorf("%w: header payload is %d bytes, want %d", errs.ErrInvalidHeaderSize, len(b), headerPayloadSize)
	}

	h := &Header{}

	off := 0
	readU64 := func() uint64 {
		v := binary.BigEndian.Uint64(b[off : off+8])
		off += 8

		return v
	}

	h.StartTime = int64(readU64())
	h.EndTime = int64(readU64())

	endianBits := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	beVal := math.Float64frombits(endianBits)
	leVal := math.Float64frombits(binary.LittleEndian.Uint64(b[off-8 : off]))

	switch {
	case closeToE(beVal):
		h.DoubleEngine = endian.GetBigEndianEngine()
	case closeToE(leVal):
		h.DoubleEngine = endian.GetLittleEndianEngine()
	default:
		return nil, fmt.Errorf("%w: endian-test double did not resolve to e in either byte order", errs.ErrInvalidHeaderSize)
	}

	h.MemoryHint = readU64()
	h.ScopeCount = readU64()
	h.VarCount = readU64()
	h.MaxHandle = readU64()
	h.SectionCount = readU64()

	h.Timescale = int8(b[off])
	off++

	h.Version = trimZeroPad(b[off : off+128])
	off += 128

	h.Date = trimZeroPad(b[off : off+119])
	off += 119

	h.FileType = b[off]
	off++

	h.TimeZero = int64(readU64())

	h.EffectiveStart = h.StartTime + h.TimeZero
	h.EffectiveEnd = h.EndTime + 1 + h.TimeZero

	return h, nil
}

func closeToE(v float64) bool {
	const eps = 1e-9

	d := v - math.E
	if d < 0 {
		d = -d
	}

	return d < eps
}

func trimZeroPad(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}

	return string(b[:i])
}

// DomainBase resolves the header's single signed timescale exponent byte
// into the (factor, unit) pair record.DomainBase requires. The exponent
// is the power of ten seconds the timescale represents (e.g. -9 -> 1ns).
func (h *Header) DomainBase() (record.DomainBase, error) {
	type fu struct {
		factor int
		unit   record.Unit
	}

	table := map[int]fu{
		2:   {100, record.S},
		1:   {10, record.S},
		0:   {1, record.S},
		-1:  {100, record.MS},
		-2:  {10, record.MS},
		-3:  {1, record.MS},
		-4:  {100, record.US},
		-5:  {10, record.US},
		-6:  {1, record.US},
		-7:  {100, record.NS},
		-8:  {10, record.NS},
		-9:  {1, record.NS},
		-10: {100, record.PS},
		-11: {10, record.PS},
		-12: {1, record.PS},
		-13: {100, record.FS},
		-14: {10, record.FS},
		-15: {1, record.FS},
	}

	e, ok := table[int(h.Timescale)]
	if !ok {
		return record.DomainBase{}, fmt.Errorf("%w: unsupported timescale exponent %d", errs.ErrInvalidNumeric, h.Timescale)
	}

	return record.NewDomainBase(e.factor, e.unit)
}
