// Package identidx implements the identifier index (C5): a dense-array
// fast path over a handle range, falling back to a hash map for sparse
// keys. Handles are small dense integers (text id-tokens, binary 1-based
// handles), so a direct array is usually viable and preferred when
// compact.
package identidx

import "github.com/tracewave/wfdecode/internal/hash"

// arrayThreshold is the safety bound (16 Mi entries) above which the
// index falls back to a hash map even if the handle range is contiguous.
const arrayThreshold = 16 * 1024 * 1024

// Logger receives the one-time selection notice ("array" vs "map").
type Logger interface {
	Infof(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Infof(string, ...any) {}

// Index maps uint64 handles to values of type V, generic so callers can
// store *record.Writer without this package importing the record package
// (which in turn stores an Index keyed by handle).
type Index[V any] struct {
	base     uint64
	arr      []V
	useArray bool
	m        map[uint64]V
	set      map[uint64]bool // tracks which array slots are populated
	zero     V
}

// Build computes the index's storage strategy from the full set of
// handles observed during signal registration, and logs the selection
// exactly once.
func Build[V any](handles []uint64, log Logger) *Index[V] {
	if log == nil {
		log = noopLogger{}
	}

	idx := &Index[V]{m: make(map[uint64]V, len(handles))}

	if len(handles) == 0 {
		log.Infof("identidx: selected map backing (0 handles)")

		return idx
	}

	min, max := handles[0], handles[0]
	for _, h := range handles[1:] {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}

	span := max - min + 1
	if span > 0 && span <= arrayThreshold {
		idx.base = min
		idx.arr = make([]V, span)
		idx.set = make(map[uint64]bool, len(handles))
		idx.useArray = true
		log.Infof("identidx: selected array backing (span=%d)", span)
	} else {
		log.Infof("identidx: selected map backing (span=%d exceeds threshold)", span)
	}

	return idx
}

// Set associates handle h with value v.
func (idx *Index[V]) Set(h uint64, v V) {
	if idx.useArray {
		i := h - idx.base
		if i < uint64(len(idx.arr)) {
			idx.arr[i] = v
			idx.set[h] = true

			return
		}
	}

	idx.m[h] = v
}

// Get looks up the value for handle h, trying the array first and
// falling back to the map on a miss or when there is no array.
func (idx *Index[V]) Get(h uint64) (V, bool) {
	if idx.useArray {
		i := h - idx.base
		if i < uint64(len(idx.arr)) && idx.set[h] {
			return idx.arr[i], true
		}
	}

	v, ok := idx.m[h]

	return v, ok
}

// Len returns the number of populated entries.
func (idx *Index[V]) Len() int {
	n := len(idx.m)
	if idx.useArray {
		n += len(idx.set)
	}

	return n
}

// HashKey computes the xxhash-based fallback key used when a caller needs
// a stable map key derived from a handle's canonical byte form (e.g. a
// text dump's printable-ASCII id-token) rather than its pre-decoded
// integer value. Delegates to internal/hash.ID.
func HashKey(token []byte) uint64 {
	return hash.ID(string(token))
}
