// Package wavevar implements the waveform variable registry (C6): the
// pre-creation bookkeeping both decoder cores populate while walking a
// header/hierarchy section, and the default Variable grouper / Signal
// creator / Writer factory collaborators that turn it into a
// record.Record's scope/signal/writer tree.
package wavevar

import "github.com/tracewave/wfdecode/record"

// PreVariable is one declared waveform variable before signal creation:
// the raw fields a header command (text $var, or binary geometry entry)
// carries, resolved against a scope but not yet wired into a Writer.
type PreVariable struct {
	Name      string
	Handle    uint64
	DataType  record.DataType
	Width     int
	HighIdx   int
	LowIdx    int
	HasIndex  bool
	Scope     *record.Scope
	Shared    bool
	TypeDesc  string
	IndexBase string
}
