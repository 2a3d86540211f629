package record

import (
	"log"
	"os"
)

// ProgressPort lets a caller observe and cancel a long-running decode.
type ProgressPort interface {
	// Cancelled is polled between blocks/records; returning true aborts
	// the decode with errs.ErrCancelRequested.
	Cancelled() bool
	// Update reports coarse progress (done out of total; total may be 0
	// when it is not known in advance, e.g. a streamed text dump).
	Update(done, total int64)
}

// NoopProgress never cancels and ignores updates.
type NoopProgress struct{}

func (NoopProgress) Cancelled() bool          { return false }
func (NoopProgress) Update(done, total int64) {}

// ConsolePort is the leveled logging sink both decoder cores write
// diagnostics through, mirroring the positional-argument leveled logger
// idiom (Infof/Warnf/Errorf over a format string) used throughout the
// pack's service code. No structured-logging library (zerolog, zap,
// logrus) appears in any retrieved go.mod, so this stays on the standard
// library's log package rather than reaching for one.
type ConsolePort interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level gates which of Infof/Warnf/Errorf actually write output.
type Level uint8

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelSilent
)

// StdConsole is the default ConsolePort: three prefixed stdlib loggers
// over stderr, gated by a minimum level.
type StdConsole struct {
	min  Level
	info *log.Logger
	warn *log.Logger
	err  *log.Logger
}

// NewStdConsole returns a ConsolePort that writes to stderr, suppressing
// anything below min.
func NewStdConsole(min Level) *StdConsole {
	flags := log.LstdFlags
	return &StdConsole{
		min:  min,
		info: log.New(os.Stderr, "INFO  ", flags),
		warn: log.New(os.Stderr, "WARN  ", flags),
		err:  log.New(os.Stderr, "ERROR ", flags),
	}
}

func (c *StdConsole) Infof(format string, args ...any) {
	if c.min <= LevelInfo {
		c.info.Printf(format, args...)
	}
}

func (c *StdConsole) Warnf(format string, args ...any) {
	if c.min <= LevelWarn {
		c.warn.Printf(format, args...)
	}
}

func (c *StdConsole) Errorf(format string, args ...any) {
	if c.min <= LevelError {
		c.err.Printf(format, args...)
	}
}
