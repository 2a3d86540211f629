package vcd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/identidx"
	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/token"
	"github.com/tracewave/wfdecode/wavevar"
)

// Stats snapshots decode progress, letting a caller assert the two-pass
// (here, single-pass) bookkeeping invariants of §8 directly rather than
// by re-walking the record.
type Stats struct {
	CommandsParsed int
	ScalarChanges  int
	VectorChanges  int
	RealChanges    int
	StringChanges  int
	TimeMarkers    int
}

// Decoder is the text dump decoder (Core A): header command parser plus
// value-change parser, driven off one token at a time.
type Decoder struct {
	sc       *scanner
	cfg      record.Config
	console  record.ConsolePort
	progress record.ProgressPort

	rec      *record.Record
	registry *wavevar.Registry
	index    *identidx.Index[*record.Writer]

	root       *record.Scope
	scopeStack []*record.Scope
	maxDepth   int

	base        record.DomainBase
	baseSet     bool
	timezero    int64

	initialized bool
	opened      bool
	closed      bool
	currentTime int64

	// states buffer reused across vector-change tokens.
	statesBuf []token.State

	stats Stats
}

// New builds a Decoder reading from r.
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

	root := record.NewRootScope()

	return &Decoder{
		sc:         newScanner(r),
		cfg:        cfg,
		console:    console,
		progress:   progress,
		registry:   wavevar.NewRegistry(),
		root:       root,
		scopeStack: []*record.Scope{root},
	}, nil
}

func (d *Decoder) currentScope() *record.Scope {
	return d.scopeStack[len(d.scopeStack)-1]
}

func (d *Decoder) errAt(kind errs.Kind, cause error) error {
	de := errs.New(kind, cause, d.sc.sr.Available(), 0)
	de.Offset = d.sc.sr.Offset()

	return de
}

// Stats returns the current decode progress snapshot.
func (d *Decoder) Stats() Stats { return d.stats }

// Decode runs the decoder to completion and returns the populated record.
func (d *Decoder) Decode() (*record.Record, error) {
	defer d.sc.close()

	for {
		if d.progress.Cancelled() {
			return d.abandonForCancel()
		}

		tok, err := d.sc.nextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, err
		}
		if len(tok) == 0 {
			continue
		}

		if err := d.dispatch(tok); err != nil {
			return nil, err
		}
	}

	if err := d.finish(); err != nil {
		return nil, err
	}

	return d.rec, nil
}

func (d *Decoder) abandonForCancel() (*record.Record, error) {
	if d.rec != nil && d.rec.IsOpen() {
		_ = d.rec.Close(d.currentTime)
	}

	return d.rec, errs.ErrCancelRequested
}

func (d *Decoder) finish() error {
	if d.rec != nil && d.rec.IsOpen() {
		return d.rec.Close(d.currentTime)
	}

	return nil
}

func (d *Decoder) dispatch(tok []byte) error {
	switch token.ClassOf(tok[0]) {
	case token.ClassCommandStart:
		return d.handleCommand(string(tok))
	case token.ClassTimeStart:
		return d.handleTime(tok)
	case token.ClassVectorStart:
		return d.handleVector(tok)
	case token.ClassRealStart:
		return d.handleReal(tok)
	case token.ClassStringStart:
		return d.handleString(tok)
	case token.ClassScalar2State, token.ClassScalar4State, token.ClassScalar16State:
		return d.handleScalar(tok)
	default:
		return d.errAt(errs.KindInvalidToken, fmt.Errorf("%w: %q", errs.ErrInvalidToken, tok))
	}
}

func splitDigits(tok []byte) (digits, rest []byte) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}

	return tok[:i], tok[i:]
}

func (d *Decoder) handleCommand(name string) error {
	d.stats.CommandsParsed++

	switch name {
	case "$date", "$version", "$comment":
		return d.sc.skipToEnd()
	case "$timescale":
		return d.handleTimescale()
	case "$timezero":
		return d.handleTimezero()
	case "$scope":
		return d.handleScope()
	case "$upscope":
		return d.handleUpscope()
	case "$var":
		return d.handleVar()
	case "$enddefinitions":
		return d.sc.skipToEnd()
	case "$dumpvars":
		return d.ensureInitialized()
	case "$dumpall", "$dumpon", "$dumpoff", "$end":
		return nil
	default:
		return d.errAt(errs.KindInvalidCommand, fmt.Errorf("%w: %q", errs.ErrInvalidCommand, name))
	}
}

func (d *Decoder) handleTimescale() error {
	tok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	digits, rest := splitDigits(tok)
	if len(digits) == 0 {
		return d.errAt(errs.KindInvalidNumeric, fmt.Errorf("%w: $timescale factor %q", errs.ErrInvalidNumeric, tok))
	}

	factor, _ := strconv.Atoi(string(digits))

	unitStr := string(rest)
	if unitStr == "" {
		tok2, err := d.sc.nextToken()
		if err != nil {
			return err
		}

		unitStr = string(tok2)
	}

	unit, err := record.ParseUnit(unitStr)
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, err)
	}

	base, err := record.NewDomainBase(factor, unit)
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, err)
	}
	if d.baseSet {
		return d.errAt(errs.KindInvariantViolation, fmt.Errorf("%w: $timescale redeclared", errs.ErrInvariantViolation))
	}

	d.base, d.baseSet = base, true

	return d.sc.skipToEnd()
}

func (d *Decoder) handleTimezero() error {
	tok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	v, err := strconv.ParseInt(string(tok), 10, 64)
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, fmt.Errorf("%w: $timezero %q", errs.ErrInvalidNumeric, tok))
	}

	d.timezero = v

	return d.sc.skipToEnd()
}

func (d *Decoder) handleScope() error {
	kindTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	nameTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	child := d.currentScope().OpenChild(string(kindTok), string(nameTok))
	d.scopeStack = append(d.scopeStack, child)

	if len(d.scopeStack) > d.maxDepth {
		d.maxDepth = len(d.scopeStack)
	}

	return d.sc.skipToEnd()
}

func (d *Decoder) handleUpscope() error {
	if len(d.scopeStack) > 1 {
		d.scopeStack = d.scopeStack[:len(d.scopeStack)-1]
	}

	return d.sc.skipToEnd()
}

func mapVarType(s string) record.DataType {
	switch s {
	case "event":
		return record.DataEvent
	case "real", "realtime":
		return record.DataReal
	case "string":
		return record.DataText
	default:
		return record.DataLogic
	}
}

func (d *Decoder) handleVar() error {
	typeTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	widthTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	idTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	refTok, err := d.sc.nextToken()
	if err != nil {
		return err
	}

	dt := mapVarType(string(typeTok))

	width, err := strconv.Atoi(string(widthTok))
	if err != nil {
		return d.errAt(errs.KindInvalidNumeric, fmt.Errorf("%w: $var width %q", errs.ErrInvalidNumeric, widthTok))
	}

	base, hasIdx, hi, lo, err := wavevar.ParseBitRange(string(refTok))
	if err != nil {
		return d.errAt(errs.KindInvalidToken, err)
	}
	if hasIdx && (dt == record.DataReal || dt == record.DataText) {
		return d.errAt(errs.KindInvariantViolation, fmt.Errorf("%w: %s %q carries a bit range", errs.ErrInvariantViolation, dt, base))
	}

	handle := identTokenToHandle(idTok)

	pv := wavevar.PreVariable{
		Name:     base,
		Handle:   handle,
		DataType: dt,
		Width:    width,
		HighIdx:  hi,
		LowIdx:   lo,
		HasIndex: hasIdx,
		Scope:    d.currentScope(),
	}

	if err := d.registry.Add(pv); err != nil {
		return d.errAt(errs.KindInvariantViolation, err)
	}

	return d.sc.skipToEnd()
}
