package wavevar

import (
	"github.com/tracewave/wfdecode/identidx"
	"github.com/tracewave/wfdecode/record"
)

// CreateSignals turns groups into record.Signals attached to their
// scopes, applying the include/exclude filters (tested against the
// signal's eventual hierarchical name). It does not prune scopes left
// empty by filtering; that is PruneEmptyScopes.
//
// Returns the surviving signals in group order, alongside a parallel
// slice of the same length recording each signal's member handles (a
// single entry for a plain signal, several for a grouped vector) so the
// caller can build Writers with NewWriters.
func CreateSignals(groups []Group, include, exclude *record.Filter) ([]*record.Signal, [][]uint64) {
	var signals []*record.Signal
	var handles [][]uint64

	for _, g := range groups {
		sig := &record.Signal{
			Name:     g.Name,
			Scope:    g.Scope,
			DataType: g.DataType,
			Width:    g.Width,
			TypeDesc: g.TypeDesc,
			Shared:   g.Shared,
		}

		full := sig.FullName()
		if !include.Empty() && !include.Match(full) {
			continue
		}
		if exclude.Match(full) {
			continue
		}

		if g.Scope != nil {
			g.Scope.Signals = append(g.Scope.Signals, sig)
		}

		signals = append(signals, sig)
		handles = append(handles, g.Handles)
	}

	return signals, handles
}

// NewWriters builds one Writer per signal (grouped via
// NewGroupedLogicWriter when it has more than one member handle) and
// indexes every member handle to its Writer, so a decoder can look up
// "the writer for handle h" directly regardless of grouping.
func NewWriters(signals []*record.Signal, handles [][]uint64, kindOf func(record.DataType) record.WriterKind, log identidx.Logger) *identidx.Index[*record.Writer] {
	var allHandles []uint64
	for _, hs := range handles {
		allHandles = append(allHandles, hs...)
	}

	idx := identidx.Build[*record.Writer](allHandles, log)

	for i, sig := range signals {
		kind := kindOf(sig.DataType)

		var w *record.Writer
		if len(handles[i]) > 1 {
			w = record.NewGroupedLogicWriter(sig, handles[i])
		} else {
			w = record.NewWriter(kind, sig)
		}

		for _, h := range handles[i] {
			idx.Set(h, w)
		}
	}

	return idx
}

// DefaultWriterKind maps a Signal's DataType to the WriterKind its Writer
// must be constructed with. This is the default Writer factory policy;
// callers with a different data model may supply their own kindOf to
// NewWriters.
func DefaultWriterKind(dt record.DataType) record.WriterKind {
	switch dt {
	case record.DataLogic:
		return record.WriterLogic
	case record.DataReal:
		return record.WriterFloat
	case record.DataText:
		return record.WriterText
	case record.DataEvent:
		return record.WriterEvent
	default:
		return record.WriterLogic
	}
}
