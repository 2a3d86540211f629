// Package breader implements the byte-range reader (C4): a seekable
// array-backed view over already-decoded blocks, and a refillable
// stream-backed view over a producer with a bounded internal buffer.
//
// Grounded on the teacher's internal/pool.ByteBuffer (growable slice with
// Grow/MustWrite/slice-view helpers) for the buffering discipline, and on
// jonjohnsonjr/targz's ranger.Reader for the "read window with residual
// carry-forward" shape.
package breader

import "github.com/tracewave/wfdecode/errs"

// ArrayReader is a seekable, array-backed byte-range reader over an
// in-memory slice such as an already-decompressed binary block.
type ArrayReader struct {
	data []byte
	pos  int
}

// NewArrayReader wraps data for absolute-seek, bounds-checked reads.
func NewArrayReader(data []byte) *ArrayReader {
	return &ArrayReader{data: data}
}

// Len returns the total number of bytes in the underlying buffer.
func (r *ArrayReader) Len() int { return len(r.data) }

// Pos returns the current absolute read position.
func (r *ArrayReader) Pos() int { return r.pos }

// Seek moves the read position to an absolute byte offset.
func (r *ArrayReader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return errs.ErrUnexpectedEOF
	}
	r.pos = pos

	return nil
}

// Remaining returns the unread suffix of the underlying buffer without
// advancing the position.
func (r *ArrayReader) Remaining() []byte {
	return r.data[r.pos:]
}

// Bytes returns n bytes at the current position and advances past them.
func (r *ArrayReader) Bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, errs.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// PeekByte returns the byte at the current position without advancing.
func (r *ArrayReader) PeekByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errs.ErrUnexpectedEOF
	}

	return r.data[r.pos], nil
}

// ReadByte returns the byte at the current position and advances by one.
func (r *ArrayReader) ReadByte() (byte, error) {
	b, err := r.PeekByte()
	if err != nil {
		return 0, err
	}
	r.pos++

	return b, nil
}

// At returns the byte at an absolute offset without touching the cursor.
func (r *ArrayReader) At(pos int) (byte, error) {
	if pos < 0 || pos >= len(r.data) {
		return 0, errs.ErrUnexpectedEOF
	}

	return r.data[pos], nil
}

// Slice returns the byte range [start, end) without touching the cursor.
func (r *ArrayReader) Slice(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(r.data) {
		return nil, errs.ErrUnexpectedEOF
	}

	return r.data[start:end], nil
}
