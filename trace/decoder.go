package trace

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tracewave/wfdecode/compress"
	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/identidx"
	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/wavevar"
)

// Stats reports what a Decoder actually touched, split across the two
// phases §4.8's block framing requires: phase 1 only frames and queues
// value-change blocks, phase 2 walks the queue and emits samples.
type Stats struct {
	BlocksRead        int
	ValueChangeQueued int
	ValueChangeWalked int
}

// queuedVC is a value-change block set aside during phase 1 for phase 2
// to decode once the header, geometry, and hierarchy are all known.
type queuedVC struct {
	typ     BlockType
	payload []byte
}

// Decoder implements the binary trace core (Core B): a two-pass block
// framer over §4.8's typed blocks, followed by a reverse-layout
// value-change decoder with dynamic-alias chain resolution (§4.10).
type Decoder struct {
	r        io.Reader
	cfg      record.Config
	console  record.ConsolePort
	progress record.ProgressPort

	header   *Header
	geometry []GeometryEntry
	registry *wavevar.Registry
	rec      *record.Record
	index    *identidx.Index[*record.Writer]

	pendingHierarchy []queuedVC
	queue            []queuedVC
	maxDepth         int
	stats            Stats
}

// New returns a Decoder reading a binary trace from r.
func New(r io.Reader, console record.ConsolePort, progress record.ProgressPort, opts ...record.Option) (*Decoder, error) {
	cfg, err := record.ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}

	if console == nil {
		console = record.NewStdConsole(record.LevelWarn)
	}
	if progress == nil {
		progress = record.NoopProgress{}
	}

	return &Decoder{r: r, cfg: cfg, console: console, progress: progress}, nil
}

// Stats reports the decoder's phase-1/phase-2 block counts.
func (d *Decoder) Stats() Stats { return d.stats }

// Decode runs both framing passes and returns the populated Record.
func (d *Decoder) Decode() (*record.Record, error) {
	if err := d.framePass(); err != nil {
		return nil, err
	}

	if d.header == nil {
		return nil, fmt.Errorf("%w: no header block present", errs.ErrInvariantViolation)
	}

	base, err := d.header.DomainBase()
	if err != nil {
		return nil, err
	}

	d.rec = record.NewRecord(base)

	if err := d.decodeHierarchyBlocks(); err != nil {
		return nil, err
	}

	groups := wavevar.GroupVectors(d.registry.Vars(), d.cfg.VectorGroup)
	signals, handles := wavevar.CreateSignals(groups, d.cfg.Include, d.cfg.Exclude)
	idx := wavevar.NewWriters(signals, handles, wavevar.DefaultWriterKind, d.console)
	d.index = idx

	if d.cfg.HierarchySplit != nil && d.maxDepth <= 1 {
		wavevar.SplitHierarchy(signals, d.cfg.HierarchySplit)
	}

	if d.cfg.PruneEmpty {
		wavevar.PruneEmptyScopes(d.rec.Root)
	}

	if err := d.openClose(); err != nil {
		return nil, err
	}

	if err := d.valueChangePass(); err != nil {
		return nil, err
	}

	if !d.rec.IsOpen() {
		return d.rec, nil
	}

	return d.rec, d.rec.Close(d.cfg.TransformTime(d.header.EffectiveEnd))
}

func (d *Decoder) openClose() error {
	open := d.cfg.TransformTime(d.header.EffectiveStart)
	if d.cfg.HasStart && d.cfg.Start > open {
		open = d.cfg.Start
	}

	return d.rec.Open(open)
}

// framePass reads every top-level block once (phase 1): a second header
// is rejected and a geometry block ahead of the header is rejected, while
// other block types ahead of the header are not checked; geometry is
// decoded immediately since
// value-change records need it; hierarchy blocks are decoded in a second
// pass of their own (decodeHierarchyBlocks) once the scope tree exists;
// value-change blocks are queued whole for phase 2; wrapper blocks are
// recursively unwrapped and reframed; blackout/skip blocks are consumed
// and ignored.
func (d *Decoder) framePass() error {
	var hierarchyBlocks []queuedVC

	for {
		if d.progress.Cancelled() {
			return errs.ErrCancelRequested
		}

		typ, length, err := readBlockHeader(d.r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return fmt.Errorf("%w: block %s payload: %v", errs.ErrUnexpectedEOF, typ, err)
		}

		d.stats.BlocksRead++

		switch {
		case typ == BlockHeader:
			if d.header != nil {
				return errs.ErrDuplicateHeaderBlock
			}

			h, err := parseHeader(payload)
			if err != nil {
				return err
			}

			d.header = h
		case typ == BlockGeometry:
			if d.header == nil {
				return fmt.Errorf("%w: geometry block before header", errs.ErrInvariantViolation)
			}

			g, err := decodeGeometry(payload, int(d.header.MaxHandle))
			if err != nil {
				return err
			}

			d.geometry = g
		case typ == BlockHierarchyPlain || typ == BlockHierarchyGzip || typ == BlockHierarchyLZ4 || typ == BlockHierarchyLZ4Duo:
			hierarchyBlocks = append(hierarchyBlocks, queuedVC{typ: typ, payload: payload})
		case typ == BlockWrapperGzip:
			inner, err := compress.DecompressStream(payload)
			if err != nil {
				return err
			}

			sub := &Decoder{r: bytes.NewReader(inner), cfg: d.cfg, console: d.console, progress: d.progress}
			if err := sub.framePass(); err != nil {
				return err
			}

			d.mergeSub(sub)
		case typ.isValueChange():
			d.queue = append(d.queue, queuedVC{typ: typ, payload: payload})
			d.stats.ValueChangeQueued++
		case typ == BlockBlackout:
			// counted only; blackout windows are not applied to emission.
		default:
			// BlockSkip and any forward-compatible unknown tag: already
			// consumed via io.ReadFull above.
		}
	}

	d.pendingHierarchy = append(d.pendingHierarchy, hierarchyBlocks...)

	return nil
}

func (d *Decoder) mergeSub(sub *Decoder) {
	if d.header == nil {
		d.header = sub.header
	}
	if d.geometry == nil {
		d.geometry = sub.geometry
	}

	d.pendingHierarchy = append(d.pendingHierarchy, sub.pendingHierarchy...)
	d.queue = append(d.queue, sub.queue...)
	d.stats.BlocksRead += sub.stats.BlocksRead
	d.stats.ValueChangeQueued += sub.stats.ValueChangeQueued
}

func (d *Decoder) decodeHierarchyBlocks() error {
	d.registry = wavevar.NewRegistry()

	for _, b := range d.pendingHierarchy {
		depth, err := decodeHierarchy(b.typ, b.payload, d.rec.Root, d.geometry, d.registry)
		if err != nil {
			return err
		}

		if depth > d.maxDepth {
			d.maxDepth = depth
		}
	}

	return nil
}

func (d *Decoder) valueChangePass() error {
	for _, q := range d.queue {
		if d.progress.Cancelled() {
			return errs.ErrCancelRequested
		}

		err := decodeValueChangeBlock(
			q.typ,
			q.payload,
			d.geometryFor,
			d.index.Get,
			func(raw int64) int64 { return d.cfg.TransformTime(raw + d.header.TimeZero) },
			d.cfg.InWindow,
			d.header.DoubleEngine,
			d.console,
		)
		if err != nil {
			return err
		}

		d.stats.ValueChangeWalked++
	}

	return nil
}

// WriterFor exposes the Writer backing a decoded handle, so a caller
// holding a Signal and the handle it was declared under can read its
// accumulated Samples after Decode returns.
func (d *Decoder) WriterFor(handle uint64) (*record.Writer, bool) {
	if d.index == nil {
		return nil, false
	}

	return d.index.Get(handle)
}

func (d *Decoder) geometryFor(handle uint64) (GeometryEntry, bool) {
	if handle == 0 || int(handle) > len(d.geometry) {
		return GeometryEntry{}, false
	}

	return d.geometry[handle-1], true
}
