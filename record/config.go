package record

import (
	"regexp"

	"github.com/tracewave/wfdecode/internal/options"
)

// Config gathers the six recognized configuration knobs a decode run
// accepts (§3/§9): hierarchy splitting, vector grouping, empty-scope
// pruning, include/exclude filters, a [start,end] time window, and the
// delay/dilate timestamp transform. Built on internal/options' functional
// option generics.
type Config struct {
	HierarchySep string
	// HierarchySplit, when set, is applied once after initial signal
	// creation to split each signal's name into extra scope levels (the
	// `hierarchy` configuration key of §6). Disabled automatically when
	// the source format already nested a scope under another scope.
	HierarchySplit *regexp.Regexp
	VectorGroup    bool
	PruneEmpty     bool

	Include *Filter
	Exclude *Filter

	HasStart bool
	Start    int64
	HasEnd   bool
	End      int64

	Delay  int64
	Dilate float64
}

// Option configures a Config.
type Option = options.Option[*Config]

// DefaultConfig is the zero-knob baseline: no grouping, no pruning, no
// filters, no window, an identity delay/dilate transform.
func DefaultConfig() Config {
	return Config{HierarchySep: ".", Dilate: 1}
}

// ApplyOptions builds a Config from DefaultConfig plus opts, in order.
func ApplyOptions(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WithHierarchySeparator overrides the "." joiner used by Scope.Path.
func WithHierarchySeparator(sep string) Option {
	return options.NoError(func(c *Config) { c.HierarchySep = sep })
}

// WithHierarchySplit sets the regex used to split signal names into
// extra scope levels after initial signal creation.
func WithHierarchySplit(pattern string) Option {
	return options.New(func(c *Config) error {
		if pattern == "" {
			c.HierarchySplit = nil

			return nil
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return err
		}

		c.HierarchySplit = re

		return nil
	})
}

// WithVectorGrouping enables merging consecutive single-bit variables
// sharing a base name into one vector signal.
func WithVectorGrouping(on bool) Option {
	return options.NoError(func(c *Config) { c.VectorGroup = on })
}

// WithPruneEmptyScopes drops scopes that end up with no signals anywhere
// in their subtree after filtering.
func WithPruneEmptyScopes(on bool) Option {
	return options.NoError(func(c *Config) { c.PruneEmpty = on })
}

// WithInclude sets the include filter from a Filter expression string.
func WithInclude(expr string) Option {
	return options.New(func(c *Config) error {
		f, err := NewFilter(expr)
		if err != nil {
			return err
		}

		c.Include = f

		return nil
	})
}

// WithExclude sets the exclude filter from a Filter expression string.
func WithExclude(expr string) Option {
	return options.New(func(c *Config) error {
		f, err := NewFilter(expr)
		if err != nil {
			return err
		}

		c.Exclude = f

		return nil
	})
}

// WithWindow restricts emitted samples to [start, end] in the record's
// own time unit.
func WithWindow(start, end int64) Option {
	return options.NoError(func(c *Config) {
		c.HasStart, c.Start = true, start
		c.HasEnd, c.End = true, end
	})
}

// WithDelay shifts every emitted timestamp by delta.
func WithDelay(delta int64) Option {
	return options.NoError(func(c *Config) { c.Delay = delta })
}

// WithDilate scales every emitted timestamp by factor after the delay
// shift. factor <= 0 is rejected at apply time.
func WithDilate(factor float64) Option {
	return options.New(func(c *Config) error {
		if factor <= 0 {
			return errDilateNotPositive
		}

		c.Dilate = factor

		return nil
	})
}

// TransformTime applies the configured delay then dilate to a raw
// timestamp.
func (c *Config) TransformTime(t int64) int64 {
	return int64(float64(t+c.Delay) * c.Dilate)
}

// InWindow reports whether t falls inside the configured [Start, End]
// window (both bounds inclusive), or true if no window was configured.
func (c *Config) InWindow(t int64) bool {
	if c.HasStart && t < c.Start {
		return false
	}
	if c.HasEnd && t > c.End {
		return false
	}

	return true
}
