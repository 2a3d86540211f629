package breader

import (
	"io"

	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/internal/pool"
)

// DefaultStreamBufferSize is the recommended refill buffer size for the
// text decoder's stream-backed reader (§4.4: "recommended 16 KiB"). The
// buffer is allowed to grow up to MaxStreamBufferSize while carrying a
// long unconsumed partial token across refills, but never beyond it.
const (
	DefaultStreamBufferSize = 16 * 1024
	MaxStreamBufferSize     = 64 * 1024
)

// StreamReader wraps an io.Reader producer with an internal buffer,
// refilling by copying residual (unconsumed) bytes to the buffer head and
// reading more from the producer. It has no absolute seek; callers track
// forward progress via Consume.
//
// The backing storage is a pool.ByteBuffer rather than a bare slice, so a
// drained StreamReader can hand its buffer back to the pool via Close
// instead of leaving it for the garbage collector.
type StreamReader struct {
	src  io.Reader
	bb   *pool.ByteBuffer
	pos  int
	end  int
	eof  bool
	maxN int

	consumedTotal int64
}

// NewStreamReader creates a stream reader with the default 16KiB buffer,
// bounded to grow up to MaxStreamBufferSize while accommodating a long
// unconsumed token.
func NewStreamReader(src io.Reader) *StreamReader {
	bb := pool.GetBlobBuffer()
	bb.SetLength(DefaultStreamBufferSize)

	return &StreamReader{
		src:  src,
		bb:   bb,
		maxN: MaxStreamBufferSize,
	}
}

// Close returns the internal buffer to the shared pool. The StreamReader
// must not be used afterward.
func (r *StreamReader) Close() {
	pool.PutBlobBuffer(r.bb)
	r.bb = nil
}

// Available returns the unconsumed bytes currently buffered.
func (r *StreamReader) Available() []byte {
	return r.bb.B[r.pos:r.end]
}

// Consume advances the read position past n already-examined bytes.
func (r *StreamReader) Consume(n int) {
	r.pos += n
	if r.pos > r.end {
		r.pos = r.end
	}
	r.consumedTotal += int64(n)
}

// Offset returns the total number of bytes consumed since construction,
// for use in byte-offset error reporting.
func (r *StreamReader) Offset() int64 {
	return r.consumedTotal
}

// EnsureAvailable guarantees at least n unconsumed bytes are buffered,
// refilling from the producer as needed. It returns errs.ErrUnexpectedEOF
// (distinguished from a parse error) if the producer is exhausted before
// n bytes become available, and a synthetic EOF is not yet being forced.
func (r *StreamReader) EnsureAvailable(n int) error {
	for r.end-r.pos < n {
		if err := r.refill(n); err != nil {
			return err
		}
	}

	return nil
}

// refill compacts residual bytes to the buffer head and reads more from
// the producer, growing the buffer (up to maxN) if a single unconsumed
// token would not otherwise fit.
func (r *StreamReader) refill(want int) error {
	residual := r.end - r.pos
	if residual > 0 {
		copy(r.bb.B, r.bb.B[r.pos:r.end])
	}
	r.pos = 0
	r.end = residual

	if r.end+want > r.bb.Cap() {
		newSize := r.bb.Cap() * 2
		for newSize < r.end+want {
			newSize *= 2
		}
		if newSize > r.maxN {
			newSize = r.maxN
		}
		if newSize < r.end+want {
			return errs.ErrInvalidToken
		}
		grown := pool.NewByteBuffer(newSize)
		grown.SetLength(newSize)
		copy(grown.B, r.bb.B[:r.end])
		r.bb = grown
	}

	if r.eof {
		return errs.ErrUnexpectedEOF
	}

	n, err := r.src.Read(r.bb.B[r.end:])
	r.end += n
	if err != nil {
		if err == io.EOF {
			r.eof = true

			return nil
		}

		return err
	}

	return nil
}

// ForceEOF appends a synthetic whitespace byte to force a trailing
// partial token to terminate, per §4.7's final-EOF handling.
func (r *StreamReader) ForceEOF(pad byte) {
	if r.end >= r.bb.Cap() {
		grown := pool.NewByteBuffer(r.bb.Cap() + 1)
		grown.SetLength(r.bb.Cap() + 1)
		copy(grown.B, r.bb.B[:r.end])
		r.bb = grown
	}
	r.bb.B[r.end] = pad
	r.end++
	r.eof = true
}

// AtEOF reports whether the producer has been fully drained (the stream
// reader may still hold unconsumed buffered bytes).
func (r *StreamReader) AtEOF() bool {
	return r.eof
}
