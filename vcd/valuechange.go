package vcd

import (
	"fmt"
	"strconv"

	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/token"
	"github.com/tracewave/wfdecode/wavevar"
)

func (d *Decoder) ensureInitialized() error {
	if d.initialized {
		return nil
	}

	if !d.baseSet {
		base, _ := record.NewDomainBase(1, record.NS)
		d.base = base
	}

	d.rec = record.NewRecord(d.base)

	groups := wavevar.GroupVectors(d.registry.Vars(), d.cfg.VectorGroup)
	signals, handles := wavevar.CreateSignals(groups, d.cfg.Include, d.cfg.Exclude)
	d.index = wavevar.NewWriters(signals, handles, wavevar.DefaultWriterKind, d.console)

	if d.cfg.HierarchySplit != nil && d.maxDepth <= 1 {
		wavevar.SplitHierarchy(signals, d.cfg.HierarchySplit)
	}
	if d.cfg.PruneEmpty {
		wavevar.PruneEmptyScopes(d.root)
	}

	d.initialized = true

	return nil
}

func (d *Decoder) handleTime(tok []byte) error {
	raw, err := strconv.ParseInt(string(tok[1:]), 10, 64)
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, fmt.Errorf("%w: time marker %q", errs.ErrInvalidNumeric, tok))
	}

	if err := d.ensureInitialized(); err != nil {
		return err
	}

	effectiveDelay := d.cfg.Delay + d.timezero
	current := int64((float64(raw) + float64(effectiveDelay)) * d.cfg.Dilate)

	return d.advanceTime(current)
}

func (d *Decoder) advanceTime(current int64) error {
	d.currentTime = current
	d.stats.TimeMarkers++

	if !d.opened {
		if !d.cfg.HasStart || current >= d.cfg.Start {
			if err := d.rec.Open(current); err != nil {
				return err
			}

			d.opened = true
		}

		return nil
	}

	if !d.closed && d.cfg.HasEnd && current > d.cfg.End {
		if err := d.rec.Close(d.cfg.End); err != nil {
			return err
		}

		d.closed = true
	}

	return nil
}

func (d *Decoder) shouldEmit() bool {
	return d.opened && !d.closed && d.cfg.InWindow(d.currentTime)
}

func (d *Decoder) writerFor(handle uint64) (*record.Writer, bool) {
	if d.index == nil {
		return nil, false
	}

	return d.index.Get(handle)
}

// WriterFor exposes the Writer backing a decoded id-token's handle, so a
// caller holding a Signal and the handle it was declared under (matched
// up via the text dump's own $var lines) can read its accumulated
// Samples after Decode returns.
func (d *Decoder) WriterFor(handle uint64) (*record.Writer, bool) {
	return d.writerFor(handle)
}

func (d *Decoder) handleScalar(tok []byte) error {
	st := token.StateOf(tok[0])
	idTok := tok[1:]
	if len(idTok) == 0 {
		return d.errAt(errs.KindInvalidToken, fmt.Errorf("%w: scalar change missing id", errs.ErrInvalidToken))
	}

	d.stats.ScalarChanges++

	handle := identTokenToHandle(idTok)
	w, ok := d.writerFor(handle)
	if !ok || !d.shouldEmit() {
		return nil
	}

	if bi, grouped := w.BitIndexForHandle(handle); grouped {
		return wrapWriterErr(w.WriteLogicBit(bi, d.currentTime, st))
	}

	switch w.Kind {
	case record.WriterLogic:
		if w.Signal.Width > 1 {
			bits := make([]token.State, w.Signal.Width)
			for i := range bits {
				bits[i] = token.State0
			}
			bits[len(bits)-1] = st

			return wrapWriterErr(w.WriteLogic(d.currentTime, bits, st.Level(), st.IsX()))
		}

		return wrapWriterErr(w.WriteLogic(d.currentTime, []token.State{st}, st.Level(), st.IsX()))
	case record.WriterEvent:
		return wrapWriterErr(w.WriteEvent(d.currentTime))
	default:
		return nil
	}
}

func (d *Decoder) handleVector(tok []byte) error {
	payload := tok[1:]

	idTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	d.stats.VectorChanges++

	d.statesBuf = d.statesBuf[:0]
	level := 2
	xtag := false

	for _, b := range payload {
		st := token.StateOf(b)
		if token.ClassOf(b) == token.ClassInvalid {
			return d.errAt(errs.KindInvalidToken, fmt.Errorf("%w: invalid vector state byte %q", errs.ErrInvalidToken, b))
		}
		if l := st.Level(); l > level {
			level = l
		}
		if st.IsX() {
			xtag = true
		}

		d.statesBuf = append(d.statesBuf, st)
	}

	handle := identTokenToHandle(idTok)
	w, ok := d.writerFor(handle)
	if !ok || !d.shouldEmit() {
		return nil
	}

	switch w.Kind {
	case record.WriterLogic:
		bits := truncateOrExtend(d.statesBuf, w.Signal.Width)

		return wrapWriterErr(w.WriteLogic(d.currentTime, bits, level, xtag))
	case record.WriterEvent:
		return wrapWriterErr(w.WriteEvent(d.currentTime))
	default:
		return nil
	}
}

// truncateOrExtend implements §4.7's vector emission rule: drop excess
// high bits when the incoming vector is wider than the signal, or
// left-extend with 0 (except when the leading surviving bit is 1 and the
// vector was shorter than the signal, which still extends with 0 per the
// spec's explicit rule) when narrower.
func truncateOrExtend(states []token.State, width int) []token.State {
	if len(states) == width {
		return append([]token.State(nil), states...)
	}
	if len(states) > width {
		return append([]token.State(nil), states[len(states)-width:]...)
	}

	out := make([]token.State, width)
	pad := width - len(states)
	for i := 0; i < pad; i++ {
		out[i] = token.State0
	}
	copy(out[pad:], states)

	return out
}

func (d *Decoder) handleReal(tok []byte) error {
	idTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	d.stats.RealChanges++

	v, err := strconv.ParseFloat(string(tok[1:]), 64)
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, fmt.Errorf("%w: real change %q", errs.ErrInvalidNumeric, tok))
	}

	handle := identTokenToHandle(idTok)
	w, ok := d.writerFor(handle)
	if !ok || !d.shouldEmit() || w.Kind != record.WriterFloat {
		return nil
	}

	return wrapWriterErr(w.WriteFloat(d.currentTime, v))
}

func (d *Decoder) handleString(tok []byte) error {
	idTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	d.stats.StringChanges++

	handle := identTokenToHandle(idTok)
	w, ok := d.writerFor(handle)
	if !ok || !d.shouldEmit() || w.Kind != record.WriterText {
		return nil
	}

	return wrapWriterErr(w.WriteText(d.currentTime, string(tok[1:])))
}

func wrapWriterErr(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("vcd: %w", err)
}
